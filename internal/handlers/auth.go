package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ikrishanaa/flowbit-analytics-dashboard/auth"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/httpx"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/models"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/internal/services"
	"github.com/ikrishanaa/flowbit-analytics-dashboard/validation"
)

// AuthHandler issues bearer tokens for dashboard accounts.
type AuthHandler struct {
	users  *services.UserService
	tokens *auth.TokenSigner
}

func NewAuthHandler(users *services.UserService, tokens *auth.TokenSigner) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type credentials struct {
	Name     string `json:"name" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=2,max=128"`
	Role     string `json:"role" validate:"omitempty,oneof=admin analyst"`
}

type loginRequest struct {
	credentials
	CreateIfNotExists bool `json:"createIfNotExists"`
}

type tokenResponse struct {
	Token string    `json:"token"`
	Role  auth.Role `json:"role"`
}

// role returns the requested role, analyst when absent.
func (c credentials) role() auth.Role {
	if c.Role == "" {
		return auth.RoleAnalyst
	}
	return auth.Role(c.Role)
}

// decodeCredentials reads and validates the body into dst. It writes the 400
// response itself and reports false when the body is unusable.
func decodeCredentials(w http.ResponseWriter, r *http.Request, dst any, c *credentials) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", map[string]string{"_": err.Error()})
		return false
	}
	c.Name = strings.TrimSpace(c.Name)
	if v := validation.Struct(c); !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_body", v)
		return false
	}
	return true
}

// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeCredentials(w, r, &req, &req) {
		return
	}
	user, err := h.users.Signup(r.Context(), req.Name, req.Password, req.role())
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			httpx.JSONError(w, http.StatusConflict, "user_exists", nil)
			return
		}
		serverError(w, r, "signup_failed", err)
		return
	}
	h.respondToken(w, r, user)
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeCredentials(w, r, &req, &req.credentials) {
		return
	}
	user, err := h.users.Login(r.Context(), req.Name, req.Password, req.CreateIfNotExists, req.role())
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		httpx.JSONError(w, http.StatusNotFound, "user_not_found", nil)
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	case errors.Is(err, services.ErrUserExists):
		httpx.JSONError(w, http.StatusConflict, "user_exists", nil)
		return
	case err != nil:
		serverError(w, r, "login_failed", err)
		return
	}
	h.respondToken(w, r, user)
}

func (h *AuthHandler) respondToken(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, err := h.tokens.Sign(user.ID, user.Name, user.Role)
	if err != nil {
		serverError(w, r, "token_failed", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokenResponse{Token: token, Role: user.Role})
}

type meResponse struct {
	UserID *uint     `json:"userId,omitempty"`
	Name   string    `json:"name,omitempty"`
	Role   auth.Role `json:"role"`
}

// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	resp := meResponse{Role: id.Role}
	if id.Authenticated() {
		resp.UserID = &id.UserID
		resp.Name = id.Name
	}
	httpx.JSON(w, http.StatusOK, resp)
}
