package core

// Summary is the income/expense aggregate over a user's transactions.
type Summary struct {
	Income  Money `json:"income"`
	Expense Money `json:"expense"`
	Balance Money `json:"balance"`
	Count   int   `json:"count"`
}

// CategoryAmount is an amount aggregated by resolved category label.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount Money  `json:"amount"`
}

// Summarize partitions transactions by type and sums each partition in
// integer cents. Pure; no store access.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.Income.Cents += t.Amount.Cents
		case Expense:
			s.Expense.Cents += t.Amount.Cents
		default:
			continue
		}
		s.Count++
	}
	s.Balance.Cents = s.Income.Cents - s.Expense.Cents
	return s
}

// CategoryBreakdown groups transactions by resolved category label and sums
// per group, sorted descending by sum. Ties keep first-seen order.
func CategoryBreakdown(txs []Transaction) []CategoryAmount {
	sums := make(map[string]int64)
	var order []string
	for _, t := range txs {
		label := t.CategoryLabel()
		if _, seen := sums[label]; !seen {
			order = append(order, label)
		}
		sums[label] += t.Amount.Cents
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: sums[name]}})
	}
	// Stable insertion sort preserves first-seen order among equal sums.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Amount.Cents > out[j-1].Amount.Cents; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
