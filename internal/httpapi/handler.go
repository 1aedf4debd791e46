package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"accounthub/account-service/internal/account"
	"accounthub/account-service/internal/token"
)

// SessionVerifier validates bearer session tokens for the /me endpoint.
type SessionVerifier interface {
	Verify(raw string) (token.Claims, error)
}

type Handler struct {
	accounts account.Accounts
	sessions SessionVerifier
}

type createAccountRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changeRoleRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type createRoleRequest struct {
	Name string `json:"name"`
}

type sessionInfo struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Fullname  string `json:"fullname"`
	ExpiresAt string `json:"expires_at"`
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHandler(accounts account.Accounts, sessions SessionVerifier) *Handler {
	return &Handler{accounts: accounts, sessions: sessions}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/accounts", h.handleAccounts)
	mux.HandleFunc("/api/accounts/login", h.handleLogin)
	mux.HandleFunc("/api/accounts/role", h.handleChangeRole)
	mux.HandleFunc("/api/accounts/me", h.handleMe)
	mux.HandleFunc("/api/roles", h.handleRoles)
	return mux
}

func (h *Handler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreateAccount(w, r)
	case http.MethodGet:
		h.handleListAccounts(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name, email, password, and role are required")
		return
	}

	resp := h.accounts.CreateAccount(r.Context(), account.CreateAccountInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	writeJSON(w, envelopeStatus(resp.Success, http.StatusBadRequest), resp)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.UsersWithRoles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	resp := h.accounts.Login(r.Context(), req.Email, req.Password)
	writeJSON(w, envelopeStatus(resp.Success, http.StatusUnauthorized), resp)
}

func (h *Handler) handleChangeRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req changeRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Role = strings.TrimSpace(req.Role)
	if req.Email == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and role are required")
		return
	}

	resp := h.accounts.ChangeUserRole(r.Context(), req.Email, req.Role)
	writeJSON(w, envelopeStatus(resp.Success, http.StatusBadRequest), resp)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	raw := strings.TrimSpace(bearerToken(r.Header.Get("Authorization")))
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
		return
	}

	claims, err := h.sessions.Verify(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid session token")
		return
	}

	writeJSON(w, http.StatusOK, sessionInfo{
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      claims.Role,
		Fullname:  claims.Fullname,
		ExpiresAt: claims.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		roles, err := h.accounts.Roles(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, roles)
	case http.MethodPost:
		var req createRoleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
			return
		}
		resp := h.accounts.CreateRole(r.Context(), req.Name)
		writeJSON(w, envelopeStatus(resp.Success, http.StatusBadRequest), resp)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func envelopeStatus(success bool, failure int) int {
	if success {
		return http.StatusOK
	}
	return failure
}

func decodeJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
