package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/wildfly/wildfly-sub133/internal/ejb/remote"
	"github.com/wildfly/wildfly-sub133/internal/infra/buildinfo"
	"github.com/wildfly/wildfly-sub133/internal/infra/tlsroots"
	"github.com/wildfly/wildfly-sub133/internal/management"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 30 * time.Second

// Options configure a Client.
type Options struct {
	Server   string
	User     string
	Password string
	CAFile   string
	Insecure bool
	Timeout  time.Duration
}

// Client is a management client for one server.
type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
}

// UnixScheme prefixes a local management socket path, as in
// unix:///run/kernel-server/kernel.sock.
const UnixScheme = "unix://"

// New creates a client. A server without a scheme is treated as http.
func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(opts.Server, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server address is required")
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	switch {
	case strings.HasPrefix(baseURL, UnixScheme):
		socket := strings.TrimPrefix(opts.Server, UnixScheme)
		transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socket)
		}
		baseURL = "http://localhost"
	case !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://"):
		baseURL = "http://" + baseURL
	}

	if strings.HasPrefix(baseURL, "https://") {
		tlsCfg, err := tlsroots.ClientConfigFromFile(opts.CAFile, opts.Insecure)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = tlsCfg
	}

	return &Client{
		baseURL:  baseURL,
		user:     opts.User,
		password: opts.Password,
		http:     &http.Client{Timeout: timeout, Transport: transport},
	}, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Metrics fetches the Prometheus exposition text.
func (c *Client) Metrics(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/metrics", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read metrics: %w", err)
	}
	return string(body), nil
}

// Execute runs a management operation. A failed outcome is returned as a
// Result, not an error; errors are reserved for transport and protocol
// problems.
func (c *Client) Execute(ctx context.Context, op management.Operation) (management.Result, error) {
	body, err := json.Marshal(op)
	if err != nil {
		return management.Result{}, fmt.Errorf("marshal operation: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/management", bytes.NewReader(body))
	if err != nil {
		return management.Result{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusInternalServerError:
		var res management.Result
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return management.Result{}, fmt.Errorf("decode result: %w", err)
		}
		if res.Outcome == "" {
			return management.Result{}, statusError(resp)
		}
		return res, nil
	default:
		return management.Result{}, statusError(resp)
	}
}

// Remote returns a client for the remote invocation service.
func (c *Client) Remote() *remote.Client {
	if c.user == "" {
		return remote.NewClient(c.http, c.baseURL)
	}
	return remote.NewClient(c.http, c.baseURL, remote.WithBasicAuth(c.user, c.password))
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	req.Header.Set("User-Agent", "kernel-cli/"+buildinfo.Version)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// statusError turns a non-success response into an error, using the
// server's {code, message} body when present.
func statusError(resp *http.Response) error {
	var e struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err := json.Unmarshal(data, &e); err == nil && e.Message != "" {
		return fmt.Errorf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
