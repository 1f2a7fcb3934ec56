package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/auth"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/dto"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/logging"
	"github.com/Naresh-BDO/DT-I-Onboarding-Portal-shared/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles login and whoami.
type AuthHandler struct {
	userSvc *service.UserService
	tokens  *auth.TokenService
	logger  *slog.Logger
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(userSvc *service.UserService, tokens *auth.TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{userSvc: userSvc, tokens: tokens, logger: logger}
}

// Login exchanges credentials for a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "invalid request body"})
		return
	}
	logger := logging.FromContext(c.Request.Context(), h.logger)

	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Invalid credentials"})
			return
		}
		logger.Error("login failed", "error", err)
		internalError(c)
		return
	}

	roles := h.userSvc.GetRoles(user)
	token, expires, err := h.tokens.CreateAccessToken(user, roles)
	if err != nil {
		logger.Error("issue access token", "error", err)
		internalError(c)
		return
	}
	logger.Info("user logged in", "username", user.Username)
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token, Expires: expires, Roles: roles})
}

// WhoAmI echoes the caller's identity from the validated token.
func (h *AuthHandler) WhoAmI(c *gin.Context) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "authorization required"})
		return
	}
	roles := p.Roles
	if roles == nil {
		roles = []string{}
	}
	c.JSON(http.StatusOK, dto.WhoAmIResponse{Username: p.Username, Roles: roles})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: "internal error"})
}
