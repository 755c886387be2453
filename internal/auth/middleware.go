package auth

import (
	"context"
	"errors"
	"runtime/debug"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// State is the position of a request in the authorization state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateTokenExtracted
	StateTokenValidated
	StateAuthorized
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateTokenExtracted:
		return "token_extracted"
	case StateTokenValidated:
		return "token_validated"
	case StateAuthorized:
		return "authorized"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Request is the framework-independent view of an inbound request.
type Request struct {
	Method        string
	Path          string
	Authorization string
}

// Decision is the state of one authorization pass.
type Decision struct {
	State   State
	Rule    Rule
	Token   string
	Context *AuthContext
	Err     error
}

func (d Decision) terminal() bool {
	return d.State == StateAuthorized || d.State == StateRejected
}

func reject(d Decision, err error) Decision {
	d.State = StateRejected
	d.Err = err
	return d
}

// Stage advances a decision by one transition.
type Stage func(req Request, d Decision) Decision

// RejectHandler writes the response for a rejected request.
type RejectHandler func(c *fiber.Ctx, err error) error

// TokenVerifier is the verification half of the codec.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// AuthorizerConfig bundles RequestAuthorizer collaborators.
type AuthorizerConfig struct {
	Verifier   TokenVerifier
	Policy     *RoutePolicy
	Logger     *zap.Logger
	Dispatcher events.Dispatcher
	// OnReject renders rejections; defaults to the standard error envelope.
	OnReject RejectHandler
	Debug    bool
}

// RequestAuthorizer authenticates and authorizes every request before routing.
type RequestAuthorizer struct {
	verifier   TokenVerifier
	policy     *RoutePolicy
	logger     *zap.Logger
	dispatcher events.Dispatcher
	onReject   RejectHandler
	stages     []Stage
}

// NewRequestAuthorizer constructs the authorizer.
func NewRequestAuthorizer(cfg AuthorizerConfig) *RequestAuthorizer {
	if cfg.Verifier == nil {
		panic("auth: token verifier is required")
	}
	policy := cfg.Policy
	if policy == nil {
		policy = MustRoutePolicy()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	onReject := cfg.OnReject
	if onReject == nil {
		debugMode := cfg.Debug
		onReject = func(c *fiber.Ctx, err error) error {
			status, body := apperrors.Translate(err, debugMode)
			return c.Status(status).JSON(body)
		}
	}

	a := &RequestAuthorizer{
		verifier:   cfg.Verifier,
		policy:     policy,
		logger:     logger,
		dispatcher: cfg.Dispatcher,
		onReject:   onReject,
	}
	a.stages = []Stage{a.extract, a.validate, a.authorize}
	return a
}

// Decide runs the stages in order until one reaches a terminal state.
// A panic inside any stage becomes a rejection with a system error.
func (a *RequestAuthorizer) Decide(req Request) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			d = reject(d, apperrors.NewPanicError(r, debug.Stack()))
		}
	}()

	d = Decision{State: StateUnauthenticated, Rule: a.policy.Match(req.Path)}
	for _, stage := range a.stages {
		d = stage(req, d)
		if d.terminal() {
			return d
		}
	}
	if d.State != StateAuthorized {
		d = reject(d, apperrors.NewInternalError(errors.New("authorization pipeline ended in state "+d.State.String())))
	}
	return d
}

func (a *RequestAuthorizer) extract(req Request, d Decision) Decision {
	if d.Rule.Anonymous {
		d.State = StateAuthorized
		return d
	}
	token, ok := BearerToken(req.Authorization)
	if !ok {
		return reject(d, apperrors.NewMissingToken())
	}
	d.Token = token
	d.State = StateTokenExtracted
	return d
}

func (a *RequestAuthorizer) validate(_ Request, d Decision) Decision {
	identity, err := a.verifier.Verify(d.Token)
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidSignature):
		return reject(d, apperrors.NewInvalidToken(err))
	case errors.Is(err, ErrExpired):
		return reject(d, apperrors.NewTokenExpired(err))
	default:
		return reject(d, apperrors.NewAuthenticationFailed(err))
	}
	d.Context = &AuthContext{Identity: identity, RawToken: d.Token}
	d.State = StateTokenValidated
	return d
}

func (a *RequestAuthorizer) authorize(_ Request, d Decision) Decision {
	if !Satisfies(d.Context.Identity.Role, d.Rule.RequiredRole) {
		return reject(d, apperrors.NewAccessDenied(string(d.Rule.RequiredRole)))
	}
	d.State = StateAuthorized
	return d
}

// Handle is the fiber middleware: decide, bind, dispatch.
func (a *RequestAuthorizer) Handle(c *fiber.Ctx) error {
	d := a.Decide(Request{
		Method:        c.Method(),
		Path:          c.Path(),
		Authorization: c.Get(fiber.HeaderAuthorization),
	})

	if d.State == StateRejected {
		a.logRejection(c, d)
		a.publishRejection(c.UserContext(), c, d)
		return a.onReject(c, d.Err)
	}

	bind(c, d.Context)
	return c.Next()
}

func (a *RequestAuthorizer) logRejection(c *fiber.Ctx, d Decision) {
	domainErr := apperrors.ToDomainError(d.Err)
	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("code", domainErr.Code()),
	}
	if d.Context != nil {
		fields = append(fields, zap.String("subject", d.Context.Identity.Subject))
	}
	if domainErr.HTTPStatus() >= fiber.StatusInternalServerError {
		a.logger.Error("authorization pipeline failed", append(fields, zap.Error(domainErr))...)
		return
	}
	a.logger.Info("request rejected", fields...)
}

func (a *RequestAuthorizer) publishRejection(ctx context.Context, c *fiber.Ctx, d Decision) {
	if a.dispatcher == nil || d.Context == nil || !apperrors.IsKind(d.Err, apperrors.KindAccessDenied) {
		return
	}
	_ = a.dispatcher.Publish(ctx, events.New(events.EventAccessDenied, d.Context.Identity.Subject,
		events.AccessDeniedPayload{
			Path:         strings.Clone(c.Path()),
			Method:       strings.Clone(c.Method()),
			Role:         d.Context.Identity.Role,
			RequiredRole: d.Rule.RequiredRole,
		}))
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
