package http

import (
	"net/http"

	"github.com/leoperezgr/Leofy/internal/core"
)

type onboardingResponse struct {
	User core.User `json:"user"`
}

func (s *Server) handleCompleteOnboarding(w http.ResponseWriter, r *http.Request, who Identity) error {
	var req onboardingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	user, err := s.authSvc.CompleteOnboarding(r.Context(), who.ID, req.Name)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, onboardingResponse{User: user})
	return nil
}
