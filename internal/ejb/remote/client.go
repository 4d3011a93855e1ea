package remote

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
)

// ApplicationError is a business error raised by a remote bean.
type ApplicationError struct {
	Message string
}

func (e *ApplicationError) Error() string { return e.Message }

// Client calls the invocation service of a kernel server.
type Client struct {
	invoke        *connect.Client[structpb.Struct, structpb.Value]
	createSession *connect.Client[structpb.Struct, structpb.Value]
}

// NewClient creates a client for the server at baseURL.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		invoke:        connect.NewClient[structpb.Struct, structpb.Value](httpClient, baseURL+InvokeProcedure, opts...),
		createSession: connect.NewClient[structpb.Struct, structpb.Value](httpClient, baseURL+CreateSessionProcedure, opts...),
	}
}

// WithBasicAuth sends HTTP basic credentials with every call.
func WithBasicAuth(user, password string) connect.ClientOption {
	token := "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+password))
	return connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", token)
			return next(ctx, req)
		}
	}))
}

// Call identifies the method to invoke.
type Call struct {
	Deployment string
	Component  string
	Method     string
	SessionID  string
	Args       []any
}

// Invoke calls a method and returns its result.
func (c *Client) Invoke(ctx context.Context, call Call) (any, error) {
	fields := map[string]any{
		"deployment": call.Deployment,
		"component":  call.Component,
		"method":     call.Method,
		"args":       call.Args,
	}
	if call.Args == nil {
		fields["args"] = []any{}
	}
	if call.SessionID != "" {
		fields["session_id"] = call.SessionID
	}
	msg, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode arguments: %w", err)
	}

	resp, err := c.invoke.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return nil, fromConnectError(err)
	}
	return resp.Msg.AsInterface(), nil
}

// CreateSession starts a session of a stateful component.
func (c *Client) CreateSession(ctx context.Context, deployment, component string) (string, error) {
	msg, err := structpb.NewStruct(map[string]any{"deployment": deployment, "component": component})
	if err != nil {
		return "", err
	}
	resp, err := c.createSession.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return "", fromConnectError(err)
	}
	return resp.Msg.GetStringValue(), nil
}

// fromConnectError rebuilds the error a remote caller sees: a
// remote-family *ejb.Error for container errors, *ApplicationError for
// business errors, and the connect error otherwise.
func fromConnectError(err error) error {
	var cerr *connect.Error
	if !errors.As(err, &cerr) {
		return err
	}
	kind := cerr.Meta().Get(ErrorKindHeader)
	if kind == "" {
		return err
	}
	if kind == ApplicationErrorKind {
		return &ApplicationError{Message: cerr.Message()}
	}
	k, ok := ejb.ParseKind(kind)
	if !ok {
		k = ejb.KindRemote
	}
	return &ejb.Error{Kind: k, Family: ejb.FamilyRemote, Message: cerr.Message()}
}
