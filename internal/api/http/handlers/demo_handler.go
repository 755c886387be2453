package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// DemoHandler serves the protected sample endpoints.
type DemoHandler struct {
	auth *service.AuthService
}

// NewDemoHandler constructs handler.
func NewDemoHandler(authService *service.AuthService) *DemoHandler {
	return &DemoHandler{auth: authService}
}

// Welcome handles GET /demo/welcome.
func (h *DemoHandler) Welcome(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return apperrors.NewMissingToken()
	}

	user, err := h.auth.Profile(c.UserContext(), identity.Subject)
	if err != nil {
		return err
	}

	return c.JSON(apperrors.Success("Welcome", dto.WelcomeResponse{
		Message:  "Welcome, " + user.FullName() + "!",
		Username: user.Username,
		FullName: user.FullName(),
		Country:  user.Country,
		Role:     string(identity.Role),
	}))
}

// UserInfo handles GET /demo/user-info.
func (h *DemoHandler) UserInfo(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFrom(c)
	if !ok {
		return apperrors.NewMissingToken()
	}

	return c.JSON(apperrors.Success("User info", dto.UserInfoResponse{
		Username:        identity.Subject,
		Authorities:     authorities(identity.Role),
		IsAuthenticated: true,
	}))
}

// Info handles GET /demo/info.
func (h *DemoHandler) Info(c *fiber.Ctx) error {
	return c.JSON(apperrors.Success("Info", "This is a protected endpoint. You are authenticated!"))
}

// Admin handles GET /demo/admin.
func (h *DemoHandler) Admin(c *fiber.Ctx) error {
	return c.JSON(apperrors.Success("Admin area", fiber.Map{
		"greeting": "Hello, " + auth.SubjectOf(c) + ". You have administrator access.",
	}))
}

// Ping handles GET /public/ping and never requires a token.
func (h *DemoHandler) Ping(c *fiber.Ctx) error {
	_, authenticated := auth.IdentityFrom(c)
	return c.JSON(apperrors.Success("pong", fiber.Map{"authenticated": authenticated}))
}

func authorities(role domain.Role) []string {
	return []string{"ROLE_" + string(role)}
}
