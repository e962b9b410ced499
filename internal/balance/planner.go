// Package balance computes the account balance adjustments implied by
// creating, editing or deleting a transaction.
//
// The planner is pure: it never touches storage. The transaction store
// applies the returned adjustments inside the same database transaction as
// the mutation that produced them.
package balance

import (
	"github.com/shopspring/decimal"
)

// Entry is the balance-relevant projection of a transaction.
type Entry struct {
	AccountID *string
	Amount    decimal.Decimal
}

// Adjustment is a signed delta to apply to one account's balance.
type Adjustment struct {
	AccountID string          `json:"account_id"`
	Delta     decimal.Decimal `json:"delta"`
}

// ForCreate returns the adjustment for a newly recorded transaction.
func ForCreate(e Entry) []Adjustment {
	if e.AccountID == nil {
		return nil
	}
	return normalize([]Adjustment{{AccountID: *e.AccountID, Delta: e.Amount}})
}

// ForDelete returns the adjustment that reverses a removed transaction.
func ForDelete(e Entry) []Adjustment {
	if e.AccountID == nil {
		return nil
	}
	return normalize([]Adjustment{{AccountID: *e.AccountID, Delta: e.Amount.Neg()}})
}

// ForUpdate returns the adjustments that move a transaction's contribution
// from its old state to its new one. Clearing the account only reverses the
// old contribution.
func ForUpdate(old, updated Entry) []Adjustment {
	var out []Adjustment
	switch {
	case old.AccountID == nil && updated.AccountID == nil:
		return nil
	case old.AccountID != nil && updated.AccountID == nil:
		out = append(out, Adjustment{AccountID: *old.AccountID, Delta: old.Amount.Neg()})
	case old.AccountID == nil && updated.AccountID != nil:
		out = append(out, Adjustment{AccountID: *updated.AccountID, Delta: updated.Amount})
	case *old.AccountID == *updated.AccountID:
		out = append(out, Adjustment{AccountID: *old.AccountID, Delta: updated.Amount.Sub(old.Amount)})
	default:
		out = append(out,
			Adjustment{AccountID: *old.AccountID, Delta: old.Amount.Neg()},
			Adjustment{AccountID: *updated.AccountID, Delta: updated.Amount},
		)
	}
	return normalize(out)
}

// normalize merges adjustments that target the same account, keeping first
// appearance order, and drops zero deltas.
func normalize(in []Adjustment) []Adjustment {
	if len(in) == 0 {
		return nil
	}
	index := make(map[string]int, len(in))
	merged := make([]Adjustment, 0, len(in))
	for _, a := range in {
		if i, ok := index[a.AccountID]; ok {
			merged[i].Delta = merged[i].Delta.Add(a.Delta)
			continue
		}
		index[a.AccountID] = len(merged)
		merged = append(merged, a)
	}
	out := merged[:0]
	for _, a := range merged {
		if !a.Delta.IsZero() {
			out = append(out, a)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Net sums the deltas of adjs per account.
func Net(adjs []Adjustment) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(adjs))
	for _, a := range adjs {
		out[a.AccountID] = out[a.AccountID].Add(a.Delta)
	}
	return out
}
