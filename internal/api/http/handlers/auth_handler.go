package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/service"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// AuthHandler exposes login and registration.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("Malformed request body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError(errs)
	}

	token, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(apperrors.Success("Login successful",
		dto.AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt}))
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewBadRequest("Malformed request body")
	}
	if errs := req.Validate(); len(errs) > 0 {
		return apperrors.NewValidationError(errs)
	}

	token, err := h.auth.Register(c.UserContext(), domain.NewUser{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Country:   req.Country,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(apperrors.Success("User registered successful",
		dto.AuthResponse{Token: token.Value, ExpiresAt: token.ExpiresAt}))
}
