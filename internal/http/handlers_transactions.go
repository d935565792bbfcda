package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/leoperezgr/Leofy/internal/core"
	"github.com/leoperezgr/Leofy/internal/httperr"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, who Identity) error {
	txs, err := s.finSvc.ListTransactions(r.Context(), who.ID)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, txs)
	return nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, who Identity) error {
	var req createTransactionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return err
	}

	txType, err := core.ParseTransactionType(req.Type)
	if err != nil {
		return httperr.Validation("type")
	}

	cents, err := core.ParseDecimalToCents(req.Amount.String())
	if err != nil {
		return httperr.Validation("amount")
	}

	occurredAt, err := parseDate(req.Date)
	if err != nil {
		return httperr.Validation("date")
	}

	category := strings.TrimSpace(req.Category)
	if category == "" && !hasValue(req.CategoryID) {
		return httperr.Validation("category")
	}

	tx := core.Transaction{
		UserID:      who.ID,
		Type:        txType,
		Amount:      core.Money{Cents: cents},
		Description: strings.TrimSpace(req.Description),
		OccurredAt:  occurredAt,
		CardID:      req.CardID,
		CategoryID:  req.CategoryID,
	}
	if category != "" {
		tx.Metadata = map[string]string{core.MetadataCategoryName: category}
	}

	created, err := s.finSvc.CreateTransaction(r.Context(), tx)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusCreated, created)
	return nil
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, core.ErrZeroDate
}

func hasValue(p *string) bool {
	return p != nil && strings.TrimSpace(*p) != ""
}
