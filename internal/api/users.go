package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bentswoodworking/bents-api/internal/auth"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (h *Handler) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), auth.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameRequired), errors.Is(err, auth.ErrPasswordTooWeak):
			writeError(c, http.StatusBadRequest, err.Error(), err)
		case errors.Is(err, auth.ErrUserExists), errors.Is(err, auth.ErrEmailExists):
			writeError(c, http.StatusConflict, err.Error(), err)
		default:
			h.logger.Errorw("register user failed", "username", req.Username, "error", err)
			writeError(c, http.StatusInternalServerError, "failed to register user", err)
		}
		return
	}

	c.JSON(http.StatusCreated, newAuthResponse(result))
}

func (h *Handler) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid payload", err)
		return
	}

	if req.Identifier == "" || req.Password == "" {
		writeError(c, http.StatusBadRequest, "identifier and password are required", auth.ErrInvalidCredentials)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), auth.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(c, http.StatusUnauthorized, err.Error(), err)
			return
		}
		h.logger.Errorw("login failed", "identifier", req.Identifier, "error", err)
		writeError(c, http.StatusInternalServerError, "failed to login", err)
		return
	}

	c.JSON(http.StatusOK, newAuthResponse(result))
}

func (h *Handler) handleUsers(c *gin.Context) {
	users, err := h.authService.Users(c.Request.Context())
	if err != nil {
		h.logger.Errorw("list users failed", "error", err)
		writeError(c, http.StatusInternalServerError, "Server error", nil)
		return
	}

	c.JSON(http.StatusOK, users)
}

func newAuthResponse(result *auth.AuthResult) gin.H {
	return gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt.Format(time.RFC3339),
		"user": gin.H{
			"id":        result.User.ID,
			"username":  result.User.Username,
			"email":     result.User.Email,
			"createdAt": result.User.CreatedAt.Format(time.RFC3339),
			"updatedAt": result.User.UpdatedAt.Format(time.RFC3339),
		},
	}
}
