package ledger

import (
	"cmp"
	"sort"

	"kumbara/internal/models"
	"kumbara/internal/uuid"
)

// casingLocked maps each lower-cased category to the casing the ledger
// already uses for it.
func (l *Ledger) casingLocked() map[string]string {
	table := make(map[string]string, len(l.txns))
	// Oldest first, so the first-seen spelling wins if stored data disagrees.
	for i := len(l.txns) - 1; i >= 0; i-- {
		c := l.txns[i].Category
		if c == "" {
			continue
		}
		key := models.CategoryKey(c)
		if _, ok := table[key]; !ok {
			table[key] = c
		}
	}
	return table
}

// normalize canonicalizes the category against table, recording a new
// spelling when none exists, and fills in a missing type.
func (l *Ledger) normalize(t models.Transaction, table map[string]string) models.Transaction {
	if t.Category != "" {
		key := models.CategoryKey(t.Category)
		if canonical, ok := table[key]; ok {
			t.Category = canonical
		} else {
			table[key] = t.Category
		}
	}
	if t.Type == "" {
		if t.Amount.IsNegative() {
			t.Type = models.TransactionTypeExpense
		} else {
			t.Type = models.TransactionTypeIncome
		}
	}
	return t
}

// normalizeAll normalizes txns against the current casing table, then
// against the list's own first-seen casing. Entries without an id get one.
func (l *Ledger) normalizeAll(txns []models.Transaction) []models.Transaction {
	table := l.casingLocked()
	seen := make(map[string]bool, len(txns))
	out := make([]models.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.ID == "" || seen[t.ID] {
			t.ID = l.newID()
		}
		seen[t.ID] = true
		out = append(out, l.normalize(t, table))
	}
	return out
}

// sortTransactions orders by calendar day descending, then id descending.
func sortTransactions(txns []models.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return Less(txns[i], txns[j])
	})
}

// Less reports whether a sorts before b in ledger order.
func Less(a, b models.Transaction) bool {
	if c := compareDay(a, b); c != 0 {
		return c > 0
	}
	return uuid.Compare(a.ID, b.ID) > 0
}

func compareDay(a, b models.Transaction) int {
	ay, am, ad := a.Date.Date()
	by, bm, bd := b.Date.Date()
	if c := cmp.Compare(ay, by); c != 0 {
		return c
	}
	if c := cmp.Compare(am, bm); c != 0 {
		return c
	}
	return cmp.Compare(ad, bd)
}
