package core

// Derived values are computed from the current payment sequence on every
// call and never stored.

// TotalPaid returns the sum of all payment amounts on the debt.
func TotalPaid(d Debt) Money {
	var sum int64
	for _, p := range d.Payments {
		sum += p.Amount.Cents
	}
	return Money{Cents: sum}
}

// Remaining returns total minus paid. Not clamped: an overpaid debt yields
// a negative remainder.
func Remaining(d Debt) Money {
	return Money{Cents: d.Total.Cents - TotalPaid(d).Cents}
}

// Percent returns the completion percentage, rounded half-up. A debt with
// a zero total is 0% complete, never a division error.
func Percent(d Debt) int {
	if d.Total.Cents <= 0 {
		return 0
	}
	paid := TotalPaid(d).Cents
	return int((paid*100 + d.Total.Cents/2) / d.Total.Cents)
}

// PrependPayment returns a new sequence with p at the front; the input
// slice is never mutated. Newest-first ordering is the storage convention.
func PrependPayment(payments []Payment, p Payment) []Payment {
	out := make([]Payment, 0, len(payments)+1)
	out = append(out, p)
	return append(out, payments...)
}

// ReplacePayment returns a new sequence with the payment matching p.ID
// rewritten in place, position preserved. The second result reports whether
// a match was found; without one the sequence is returned unchanged.
func ReplacePayment(payments []Payment, p Payment) ([]Payment, bool) {
	out := make([]Payment, len(payments))
	copy(out, payments)
	for i := range out {
		if out[i].ID == p.ID {
			out[i] = p
			return out, true
		}
	}
	return out, false
}

// FilterPayment returns a new sequence with the payment of the given id
// removed, order of the remaining elements preserved.
func FilterPayment(payments []Payment, id string) []Payment {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
