package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/observability"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	deps        map[string]Pinger
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. Disabled dependencies are reported but never fail readiness.
func NewHealthHandler(serviceName, version string, metrics *observability.Metrics, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, deps: deps, metrics: metrics}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	snap := h.metrics.Snapshot()
	var requests, failures int64
	for _, n := range snap.Requests {
		requests += n
	}
	for _, n := range snap.Errors {
		failures += n
	}
	return c.JSON(apperrors.Success("alive", fiber.Map{
		"service":  h.serviceName,
		"version":  h.version,
		"requests": requests,
		"errors":   failures,
	}))
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	for name, dep := range h.deps {
		switch {
		case dep == nil || !dep.Enabled():
			depStatus[name] = "disabled"
		default:
			if err := dep.Ping(ctx); err != nil {
				depStatus[name] = err.Error()
				ready = false
			} else {
				depStatus[name] = "ok"
			}
		}
	}

	if ready {
		return c.JSON(apperrors.Success("ready", fiber.Map{"dependencies": depStatus}))
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(apperrors.APIResponse{
		Timestamp: time.Now().UTC(),
		Success:   false,
		Message:   "one or more dependencies unavailable",
		Data:      fiber.Map{"dependencies": depStatus},
		Error: &apperrors.ErrorDetails{
			ErrorCode: "DEPENDENCY_UNAVAILABLE",
			ErrorType: apperrors.ErrorTypeSystem,
		},
	})
}
