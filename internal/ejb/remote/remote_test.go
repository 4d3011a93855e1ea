package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfly/wildfly-sub133/internal/cache"
	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/ejb/container"
	"github.com/wildfly/wildfly-sub133/internal/infra/executor"
	"github.com/wildfly/wildfly-sub133/internal/management"
	"github.com/wildfly/wildfly-sub133/internal/msc"
	"github.com/wildfly/wildfly-sub133/internal/observability/collector"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/metric"
)

func newTestServer(t *testing.T) *Client {
	t.Helper()
	ctx := context.Background()

	model := management.NewModel()
	coll := collector.New(model, metric.NewRegistry(), collector.WithLogger(logger.Nop()))
	services := msc.NewContainer(logger.Nop())
	require.NoError(t, cache.Install(services, model, cache.New(cache.DefaultConfig("sessions"), logger.Nop())))
	pool := executor.New("default", 2, 8, executor.WithLogger(logger.Nop()))
	require.NoError(t, pool.Start())

	c := container.New(model, coll, pool, container.NewCacheSessions(services, cache.ServiceName("sessions")), container.WithLogger(logger.Nop()))
	require.NoError(t, c.Deploy(ctx, container.SampleDeployment()))

	mux := http.NewServeMux()
	path, h := NewHandler(NewService(c, logger.Nop()), connect.WithInterceptors(NewLoggingInterceptor(logger.Nop())))
	mux.Handle(path, h)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		_ = pool.Stop(ctx)
		_ = services.Shutdown(ctx)
	})
	return NewClient(srv.Client(), srv.URL)
}

func sample(component, method string, args ...any) Call {
	return Call{Deployment: container.SampleDeploymentName, Component: component, Method: method, Args: args}
}

func TestInvoke_Stateless(t *testing.T) {
	client := newTestServer(t)
	v, err := client.Invoke(context.Background(), sample("Calculator", "add", 2, 3))
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestInvoke_FutureAwaitedOnServer(t *testing.T) {
	client := newTestServer(t)
	v, err := client.Invoke(context.Background(), sample("Calculator", "addAsync", 1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
}

func TestInvoke_ApplicationError(t *testing.T) {
	client := newTestServer(t)
	_, err := client.Invoke(context.Background(), sample("Calculator", "divide", 1, 0))
	var appErr *ApplicationError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "division by zero", appErr.Message)
}

func TestInvoke_ContainerErrorsArriveInRemoteFamily(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()

	_, err := client.Invoke(ctx, sample("Missing", "add"))
	e, ok := ejb.AsError(err)
	require.True(t, ok, "got %v", err)
	assert.Equal(t, ejb.KindNoSuchObject, e.Kind)
	assert.Equal(t, ejb.FamilyRemote, e.Family)

	_, err = client.Invoke(ctx, sample("Calculator", "sqrt", -4))
	assert.ErrorIs(t, err, &ejb.Error{Kind: ejb.KindRemote, Family: ejb.FamilyRemote})
}

func TestInvoke_StatefulSession(t *testing.T) {
	client := newTestServer(t)
	ctx := context.Background()

	id, err := client.CreateSession(ctx, container.SampleDeploymentName, "Counter")
	require.NoError(t, err)

	call := sample("Counter", "increment", 5)
	call.SessionID = id
	v, err := client.Invoke(ctx, call)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	call.Method, call.Args = "remove", nil
	_, err = client.Invoke(ctx, call)
	assert.ErrorIs(t, err, ejb.ErrAccessDenied)
}

func TestInvoke_MissingFields(t *testing.T) {
	client := newTestServer(t)
	_, err := client.Invoke(context.Background(), Call{Component: "Calculator"})
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestCreateSession_UnknownComponent(t *testing.T) {
	client := newTestServer(t)
	_, err := client.CreateSession(context.Background(), container.SampleDeploymentName, "Nope")
	assert.ErrorIs(t, err, ejb.ErrNoSuchEJB)
}
