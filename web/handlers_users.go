// ABOUTME: User endpoints: the authenticated profile, partial profile updates,
// ABOUTME: public lookup by identifier, and account deactivation.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/ulid"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

// updateMeRequest uses pointers so PATCH can distinguish "leave unchanged"
// from "set to empty".
type updateMeRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	FullName *string `json:"full_name"`
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req updateMeRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		if *req.Email == "" {
			s.writeError(w, r, core.Validation(map[string][]string{"email": {"required"}}))
			return
		}
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}

	if err := s.store.UpdateUser(user); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, user)
}

// publicUser is the externally visible subset of a user record.
type publicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Validate before the lookup: a malformed identifier never reaches the
	// storage layer as a query key.
	if !ulid.IsValid(id) {
		apiErr := core.NotFound("user.errors.NOT_FOUND")
		apiErr.Params = map[string]any{"user_id": id}
		s.writeError(w, r, apiErr)
		return
	}

	user, err := s.store.GetUser(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, publicUser{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
	})
}

func (s *Server) handleDeactivateMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.DeactivateUser(user.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
