package localserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

func socketClient(path string) *http.Client {
	return &http.Client{Transport: &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", path)
		},
	}}
}

func shortTempDir(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "ls")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestServer_LocalIdentity(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "kernel.sock")
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ejb.IdentityFromContext(r.Context())
		_, _ = io.WriteString(w, id.Name)
	})

	s := New(path, h, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		info, err := os.Stat(path)
		return err == nil && info.Mode().Perm() == 0o600
	}, 2*time.Second, 10*time.Millisecond)

	resp, err := socketClient(path).Get("http://local/whoami")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "$local", string(body))

	cancel()
	require.NoError(t, <-done)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "socket file should be removed")
}

func TestServer_ReplacesStaleSocket(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "kernel.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	// Closing a unix listener unlinks the file; keep it to simulate a crash.
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	require.NoError(t, ln.Close())

	s := New(path, http.NotFoundHandler(), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := socketClient(path).Get("http://local/")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestServer_RefusesRegularFile(t *testing.T) {
	path := filepath.Join(shortTempDir(t), "kernel.sock")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	err := New(path, http.NotFoundHandler(), logger.Nop()).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a socket")
}
