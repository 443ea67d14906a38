package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-diagram-workspace/internal/application"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
	"github.com/oksasatya/go-diagram-workspace/internal/interface/middleware"
	"github.com/oksasatya/go-diagram-workspace/pkg/response"
)

// TokenMinter issues session tokens for an authenticated principal.
type TokenMinter interface {
	Mint(p *entity.Principal) (string, time.Time, error)
}

type AuthHandler struct {
	Svc    *application.AuthService
	Tokens TokenMinter
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, tokens TokenMinter, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Tokens: tokens, Logger: logger}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type tokenResponse struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id"`
	Username  string            `json:"username"`
	Email     string            `json:"email"`
	Roles     []entity.RoleName `json:"roles"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type principalResponse struct {
	UserID   string            `json:"user_id"`
	Username string            `json:"username"`
	Email    string            `json:"email"`
	Roles    []entity.RoleName `json:"roles"`
}

// Signup POST /api/auth/signup. Registration never logs the caller in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	_, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	const msg = "User registered successfully!"
	response.Success(c, http.StatusOK, messageResponse{Message: msg}, msg, nil)
}

// Signin POST /api/auth/signin
func (h *AuthHandler) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	p, err := h.Svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrAuthentication) {
			response.Error[any](c, http.StatusUnauthorized, msgBadCredentials, nil)
			return
		}
		writeError(c, h.Logger, err)
		return
	}
	token, exp, err := h.Tokens.Mint(p)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tokenResponse{
		Token:     token,
		Type:      "Bearer",
		UserID:    p.UserID,
		Username:  p.Username,
		Email:     p.Email,
		Roles:     p.Roles,
		ExpiresAt: exp,
	}, "signed in", nil)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		writeError(c, h.Logger, errs.ErrAuthentication)
		return
	}
	response.Success(c, http.StatusOK, principalResponse{
		UserID:   p.UserID,
		Username: p.Username,
		Email:    p.Email,
		Roles:    p.Roles,
	}, "current user", nil)
}
