// ABOUTME: Preference endpoints: read (with platform defaults for users who
// ABOUTME: never saved any) and full replacement via PUT.
package web

import (
	"net/http"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/server"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())
	pref, err := s.store.GetPreference(userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pref)
}

type preferenceRequest struct {
	Language     string `json:"language"`
	Theme        string `json:"theme"`
	PushEnabled  bool   `json:"push_enabled"`
	EmailEnabled bool   `json:"email_enabled"`
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())

	var req preferenceRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Language == "" {
		req.Language = s.msgs.DefaultLocale()
	}
	if req.Theme == "" {
		req.Theme = "light"
	}

	pref := &core.Preference{
		UserID:       userID,
		Language:     req.Language,
		Theme:        req.Theme,
		PushEnabled:  req.PushEnabled,
		EmailEnabled: req.EmailEnabled,
	}
	if err := s.store.UpsertPreference(pref); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pref)
}
