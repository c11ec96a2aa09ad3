// ABOUTME: JSON response helpers: the localized error envelope, body decoding
// ABOUTME: with validation errors, and the authenticated-user lookup.
package web

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/server"
)

// errorBody is the wire shape of every failed response:
// {"error": {"code": ..., "message": ..., "details": ...}}.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    core.Code `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("component=web action=encode error=%v", err)
	}
}

// writeError maps any error onto the envelope, resolving the message in the
// request's preferred locale. Server faults log their cause; client errors
// don't clutter the log.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := core.AsAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.Printf("component=web request_id=%s code=%s error=%v",
			middleware.GetReqID(r.Context()), apiErr.Code, err)
	}

	locale := s.msgs.PreferredLocale(r)
	s.writeJSON(w, apiErr.Status, errorBody{Error: errorDetail{
		Code:    apiErr.Code,
		Message: s.msgs.Text(apiErr.Key(), apiErr.Params, locale),
		Details: apiErr.Details,
	}})
}

// decodeJSON reads a request body into v, converting malformed JSON into the
// standard validation error.
func (s *Server) decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return core.Validation(map[string][]string{"body": {err.Error()}})
	}
	return nil
}

// currentUser loads the authenticated user from the request context. The auth
// middleware guarantees a user ID on protected routes; a missing one means
// the route was wired outside the middleware, which is a server fault.
func (s *Server) currentUser(r *http.Request) (*core.User, error) {
	userID, ok := server.UserIDFromContext(r.Context())
	if !ok {
		return nil, core.TokenInvalid()
	}
	return s.store.GetUser(userID)
}
