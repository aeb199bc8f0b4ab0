package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/resale-admin/internal/api/dto"
	"github.com/spec-kit/resale-admin/internal/auth"
	"github.com/spec-kit/resale-admin/internal/config"
	apperrors "github.com/spec-kit/resale-admin/pkg/util/errorutil"
)

// SessionHandler issues operator session tokens.
type SessionHandler struct {
	tokens *auth.TokenManager
	cfg    config.AuthConfig
}

// NewSessionHandler constructs handler.
func NewSessionHandler(tokens *auth.TokenManager, cfg config.AuthConfig) *SessionHandler {
	return &SessionHandler{tokens: tokens, cfg: cfg}
}

// Login POST /auth/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Name == "" || req.Password == "" {
		return apperrors.NewValidationError("name and password required", nil)
	}
	if h.cfg.OperatorPasswordHash == "" {
		return apperrors.NewUnauthorized("operator login not configured")
	}
	if subtle.ConstantTimeCompare([]byte(req.Name), []byte(h.cfg.OperatorName)) != 1 {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(h.cfg.OperatorPasswordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken(req.Name)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{Token: token, ExpiresAt: expiresAt}})
}
