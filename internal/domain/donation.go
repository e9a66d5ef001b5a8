package domain

import "time"

// Donation is a pledge recorded before the payment provider takes over.
type Donation struct {
	ID          string    `json:"id"           db:"id"`
	DonorName   string    `json:"donor_name"   db:"donor_name"`
	DonorEmail  string    `json:"donor_email"  db:"donor_email"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Currency    string    `json:"currency"     db:"currency"`
	Message     string    `json:"message"      db:"message"`
	Status      string    `json:"status"       db:"status"` // pending, paid, failed
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

// Donation status constants.
const (
	DonationStatusPending = "pending"
	DonationStatusPaid    = "paid"
	DonationStatusFailed  = "failed"
)
