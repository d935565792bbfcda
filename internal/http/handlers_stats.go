package http

import (
	"net/http"

	"github.com/leoperezgr/Leofy/internal/httperr"
)

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request, who Identity) error {
	summary, err := s.finSvc.Summary(r.Context(), who.ID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, summary)
	return nil
}

func (s *Server) handleStatsCategories(w http.ResponseWriter, r *http.Request, who Identity) error {
	breakdown, err := s.finSvc.CategoryBreakdown(r.Context(), who.ID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, breakdown)
	return nil
}

func (s *Server) handleStatsDashboard(w http.ResponseWriter, r *http.Request, who Identity) error {
	// The userId parameter is only honored when it names the caller.
	// Asking for anyone else's dashboard is an authorization failure.
	if target := r.URL.Query().Get("userId"); target != "" && target != who.ID {
		return httperr.ErrUnauthenticated
	}

	dashboard, err := s.finSvc.DashboardFor(r.Context(), who.ID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, dashboard)
	return nil
}
