package models

// Split is one participant's assigned share of an expense's total.
type Split struct {
	// UserID identifies the participant. A user appears at most once in
	// an expense's splits.
	UserID string

	// Amount is this participant's share of the expense total.
	Amount float64

	// Paid marks the share as already settled outside the normal
	// settlement flow. Paid shares are excluded from balance math.
	Paid bool
}

// Expense represents a shared expense fronted by one user and divided
// among participants. Expenses are immutable to the balance engine.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Description is a short human-readable label.
	Description string

	// Amount is the total the payer fronted. The splits are assumed to
	// sum to this; the engine does not re-validate.
	Amount float64

	// PaidByUserID is the user who fronted the payment.
	PaidByUserID string

	// GroupID scopes the expense to a group. Empty means personal.
	GroupID string

	// Date is the Unix millisecond timestamp of the expense.
	Date int64

	// Splits is the ordered division of Amount among participants.
	Splits []Split

	// CreatedBy is the user who recorded the expense.
	CreatedBy string
}

// SplitFor returns the viewer's own split entry, or nil if the viewer has
// no split in this expense.
func (e *Expense) SplitFor(userID string) *Split {
	for i := range e.Splits {
		if e.Splits[i].UserID == userID {
			return &e.Splits[i]
		}
	}
	return nil
}

// Involves reports whether the user paid the expense or holds a split in it.
func (e *Expense) Involves(userID string) bool {
	return e.PaidByUserID == userID || e.SplitFor(userID) != nil
}
