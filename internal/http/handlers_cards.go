package http

import (
	"net/http"
	"strings"

	"github.com/leoperezgr/Leofy/internal/core"
	"github.com/leoperezgr/Leofy/internal/httperr"
)

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request, who Identity) error {
	cards, err := s.finSvc.ListCards(r.Context(), who.ID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, cards)
	return nil
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request, who Identity) error {
	var req createCardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	card := core.CreditCard{
		UserID:     who.ID,
		Name:       strings.TrimSpace(req.Name),
		Last4:      req.Last4,
		Brand:      core.CardBrand(req.Brand),
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
	}
	if req.CreditLimit != nil {
		cents, err := core.ParseDecimalToCents(req.CreditLimit.String())
		if err != nil {
			return httperr.Validation("credit_limit")
		}
		card.CreditLimit = &core.Money{Cents: cents}
	}

	created, err := s.finSvc.CreateCard(r.Context(), card)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, created)
	return nil
}
