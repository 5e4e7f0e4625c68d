package models

// Settlement represents a direct payment between two users that reduces an
// outstanding balance.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// PaidByUserID is the user who paid (debtor settling up).
	PaidByUserID string

	// ReceivedByUserID is the user who received payment.
	ReceivedByUserID string

	// GroupID scopes the settlement to a group. Empty means personal.
	GroupID string

	// Amount is the positive quantity transferred from payer to receiver.
	Amount float64

	// Date is the Unix millisecond timestamp of the payment.
	Date int64

	// Note is an optional description for the settlement.
	Note string

	// CreatedBy is the user who recorded the settlement.
	CreatedBy string
}

// Involves reports whether the user is one of the two parties.
func (s *Settlement) Involves(userID string) bool {
	return s.PaidByUserID == userID || s.ReceivedByUserID == userID
}
