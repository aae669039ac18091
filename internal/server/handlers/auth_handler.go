package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/billing/internal/service/users"
)

// AuthHandler exposes account registration and sign-in.
type AuthHandler struct {
	svc    *users.Service
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc *users.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// Register creates a password account and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var in users.RegisterInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	session, err := h.svc.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Login signs in a password account.
func (h *AuthHandler) Login(c *gin.Context) {
	var in users.LoginInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	session, err := h.svc.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// OAuth signs in with a Google or GitHub access token.
func (h *AuthHandler) OAuth(c *gin.Context) {
	var in users.OAuthInput
	if !bindJSON(c, h.logger, &in) {
		return
	}
	session, err := h.svc.OAuthLogin(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Me returns the signed-in account.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
