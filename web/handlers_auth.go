// ABOUTME: Auth endpoints: registration with password strength checks, login
// ABOUTME: with a deliberately generic failure, and refresh-token rotation.
package web

import (
	"errors"
	"net/http"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/server"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type authResponse struct {
	User   *core.User        `json:"user"`
	Tokens *server.TokenPair `json:"tokens"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.OpenRegistration {
		apiErr := core.PermissionDenied()
		apiErr.MessageKey = "auth.errors.REGISTRATION_CLOSED"
		s.writeError(w, r, apiErr)
		return
	}

	var req registerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	fieldErrs := map[string][]string{}
	if req.Email == "" {
		fieldErrs["email"] = append(fieldErrs["email"], "required")
	}
	if req.Password == "" {
		fieldErrs["password"] = append(fieldErrs["password"], "required")
	}
	if len(fieldErrs) > 0 {
		s.writeError(w, r, core.Validation(fieldErrs))
		return
	}

	if err := server.CheckPasswordStrength(req.Password); err != nil {
		s.writeError(w, r, core.Business("auth.errors.WEAK_PASSWORD",
			map[string]any{"reason": err.Error()}))
		return
	}

	hash, err := server.HashPassword(req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user := &core.User{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		FullName:     req.FullName,
	}
	if err := s.store.CreateUser(user); err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens, err := server.IssueTokenPair(s.cfg.Secret, user.ID, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.GetUserByEmail(req.Email)
	if err != nil {
		// Same response whether the account is missing or the password is
		// wrong, so probes can't enumerate accounts.
		var apiErr *core.APIError
		if errors.As(err, &apiErr) && apiErr.Code == core.CodeNotFound {
			s.writeError(w, r, core.AuthFailed())
			return
		}
		s.writeError(w, r, err)
		return
	}
	if !server.VerifyPassword(req.Password, user.PasswordHash) {
		s.writeError(w, r, core.AuthFailed())
		return
	}

	tokens, err := server.IssueTokenPair(s.cfg.Secret, user.ID, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	userID, err := server.VerifyToken(s.cfg.Secret, req.RefreshToken, server.TokenRefresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// A deactivated account's refresh tokens stop working immediately.
	user, err := s.store.GetUser(userID)
	if err != nil {
		s.writeError(w, r, core.TokenInvalid())
		return
	}

	tokens, err := server.IssueTokenPair(s.cfg.Secret, user.ID, s.cfg.AccessTTL, s.cfg.RefreshTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}
