package remote

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wildfly/wildfly-sub133/internal/ejb"
	"github.com/wildfly/wildfly-sub133/internal/ejb/container"
	"github.com/wildfly/wildfly-sub133/internal/ejb/interceptor"
	"github.com/wildfly/wildfly-sub133/internal/telemetry/logger"
)

const (
	// ServiceName is the fully-qualified service name.
	ServiceName = "kernel.ejb.v1.InvocationService"
	// InvokeProcedure calls a business method.
	InvokeProcedure = "/" + ServiceName + "/Invoke"
	// CreateSessionProcedure starts a stateful session.
	CreateSessionProcedure = "/" + ServiceName + "/CreateSession"
	// ErrorKindHeader carries the kind of a failed call.
	ErrorKindHeader = "Kernel-Ejb-Error-Kind"
	// ApplicationErrorKind marks a business error declared by the bean.
	ApplicationErrorKind = "APPLICATION"
)

// Invoker is the part of the container the service needs.
type Invoker interface {
	Invoke(ctx context.Context, req container.Request) (any, error)
	CreateSession(ctx context.Context, deployment, component string) (string, error)
	Component(deployment, name string) (*ejb.Component, bool)
}

// Service implements the invocation service.
type Service struct {
	invoker Invoker
	log     logger.Logger
}

// NewService creates the service.
func NewService(invoker Invoker, log logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{invoker: invoker, log: log.With("component", "ejb-remote")}
}

// NewHandler returns the path prefix and handler that serve s.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(InvokeProcedure, connect.NewUnaryHandler(InvokeProcedure, s.Invoke, opts...))
	mux.Handle(CreateSessionProcedure, connect.NewUnaryHandler(CreateSessionProcedure, s.CreateSession, opts...))
	return "/" + ServiceName + "/", mux
}

// Invoke calls a method through the remote view.
//
// Request fields: deployment, component, method, session_id (optional) and
// args (list).
func (s *Service) Invoke(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Value], error) {
	msg := req.Msg
	call := container.Request{
		Deployment: stringField(msg, "deployment"),
		Component:  stringField(msg, "component"),
		Method:     stringField(msg, "method"),
		SessionID:  stringField(msg, "session_id"),
		View:       interceptor.ViewRemote,
		Args:       argsField(msg),
	}
	if call.Deployment == "" || call.Component == "" || call.Method == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("deployment, component and method are required"))
	}

	res, err := s.invoker.Invoke(ctx, call)
	if fut, ok := res.(*interceptor.Future); ok && err == nil {
		res, err = fut.Get(ctx)
		if err != nil && ctx.Err() != nil {
			fut.Cancel(true)
		}
	}
	if err != nil {
		return nil, s.toConnectError(call, err)
	}

	v, err := toValue(res)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(v), nil
}

// CreateSession starts a session. Request fields: deployment, component.
// The response is the session ID.
func (s *Service) CreateSession(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Value], error) {
	dep, comp := stringField(req.Msg, "deployment"), stringField(req.Msg, "component")
	if dep == "" || comp == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("deployment and component are required"))
	}
	id, err := s.invoker.CreateSession(ctx, dep, comp)
	if err != nil {
		return nil, s.toConnectError(container.Request{Deployment: dep, Component: comp, View: interceptor.ViewRemote}, err)
	}
	return connect.NewResponse(structpb.NewStringValue(id)), nil
}

func (s *Service) toConnectError(call container.Request, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	var (
		kind string
		code connect.Code
		msg  = err.Error()
	)
	if e, ok := ejb.AsError(err); ok {
		kind, code, msg = e.Kind.String(), codeOf(e.Kind), e.Message
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
	} else if comp, ok := s.invoker.Component(call.Deployment, call.Component); ok && comp.IsApplicationError(err) {
		kind, code = ApplicationErrorKind, connect.CodeFailedPrecondition
	} else {
		// Bean system errors reach remote callers as remote errors.
		kind, code = ejb.KindRemote.String(), connect.CodeInternal
	}

	cerr := connect.NewError(code, errors.New(msg))
	cerr.Meta().Set(ErrorKindHeader, kind)
	return cerr
}

func codeOf(k ejb.Kind) connect.Code {
	switch k {
	case ejb.KindNoSuchEJB, ejb.KindNoSuchObject:
		return connect.CodeNotFound
	case ejb.KindAccessDenied:
		return connect.CodePermissionDenied
	case ejb.KindComponentUnavailable:
		return connect.CodeUnavailable
	case ejb.KindConcurrentAccessTimeout, ejb.KindTransactionRolledback:
		return connect.CodeAborted
	case ejb.KindTransactionRequired:
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInternal
	}
}
