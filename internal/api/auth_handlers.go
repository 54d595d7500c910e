package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/visitor-access/internal/auth"
)

// AuthHandlers issues operator tokens. Operator accounts come from
// configuration; there is no self-registration.
type AuthHandlers struct {
	operators  auth.OperatorDirectory
	jwtService *auth.JWTService
}

func NewAuthHandlers(operators auth.OperatorDirectory, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{operators: operators, jwtService: jwtService}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Role         string `json:"role"`
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	op, ok := h.operators.Authenticate(req.Email, req.Password)
	if !ok {
		respondJSONError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	accessToken, _, err := h.jwtService.GenerateAccessToken(op.Email, op.Role)
	if err != nil {
		respondJSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}
	refreshToken, _, err := h.jwtService.GenerateRefreshToken(op.Email)
	if err != nil {
		respondJSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         op.Role,
	})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	op, ok := h.operators[email]
	if !ok {
		respondJSONError(w, "Unknown operator", http.StatusUnauthorized)
		return
	}

	accessToken, _, err := h.jwtService.GenerateAccessToken(op.Email, op.Role)
	if err != nil {
		respondJSONError(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, TokenResponse{AccessToken: accessToken, Role: op.Role})
}
