// ABOUTME: Address endpoints scoped to the authenticated user: CRUD plus the
// ABOUTME: default-address toggle.
package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mealdash/mealdash/core"
	"github.com/mealdash/mealdash/server"
)

type addressRequest struct {
	Recipient string `json:"recipient"`
	Phone     string `json:"phone"`
	Province  string `json:"province"`
	City      string `json:"city"`
	District  string `json:"district"`
	Detail    string `json:"detail"`
	IsDefault bool   `json:"is_default"`
}

func (req *addressRequest) validate() error {
	fieldErrs := map[string][]string{}
	for field, value := range map[string]string{
		"recipient": req.Recipient,
		"phone":     req.Phone,
		"province":  req.Province,
		"city":      req.City,
		"district":  req.District,
		"detail":    req.Detail,
	} {
		if value == "" {
			fieldErrs[field] = append(fieldErrs[field], "required")
		}
	}
	if len(fieldErrs) > 0 {
		return core.Validation(fieldErrs)
	}
	return nil
}

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())
	addrs, err := s.store.ListAddresses(userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if addrs == nil {
		addrs = []core.Address{}
	}
	s.writeJSON(w, http.StatusOK, addrs)
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())

	var req addressRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	addr := &core.Address{
		UserID:    userID,
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Province:  req.Province,
		City:      req.City,
		District:  req.District,
		Detail:    req.Detail,
		IsDefault: req.IsDefault,
	}
	if err := s.store.CreateAddress(addr); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, addr)
}

func (s *Server) handleGetAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())
	addr, err := s.store.GetAddress(userID, chi.URLParam(r, "addr_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, addr)
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())

	var req addressRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	addr := &core.Address{
		ID:        chi.URLParam(r, "addr_id"),
		UserID:    userID,
		Recipient: req.Recipient,
		Phone:     req.Phone,
		Province:  req.Province,
		City:      req.City,
		District:  req.District,
		Detail:    req.Detail,
	}
	if err := s.store.UpdateAddress(addr); err != nil {
		s.writeError(w, r, err)
		return
	}

	// Re-read so the response carries is_default and timestamps.
	saved, err := s.store.GetAddress(userID, addr.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())
	if err := s.store.DeleteAddress(userID, chi.URLParam(r, "addr_id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	userID, _ := server.UserIDFromContext(r.Context())
	addrID := chi.URLParam(r, "addr_id")
	if err := s.store.SetDefaultAddress(userID, addrID); err != nil {
		s.writeError(w, r, err)
		return
	}
	addr, err := s.store.GetAddress(userID, addrID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, addr)
}
