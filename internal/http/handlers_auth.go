package http

import (
	"net/http"

	"github.com/leoperezgr/Leofy/internal/core"
)

type authResponse struct {
	Token string    `json:"token"`
	User  core.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	user, token, err := s.authSvc.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	user, token, err := s.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
	return nil
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, who Identity) error {
	user, err := s.authSvc.Profile(r.Context(), who.ID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, who Identity) error {
	var req updateProfileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	user, err := s.authSvc.UpdateProfile(r.Context(), who.ID, req.FullName, req.Email)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, user)
	return nil
}
