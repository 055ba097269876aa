package domain

import "time"

// PartyRole distinguishes which side of a claim a party is on.
type PartyRole string

const (
	PartyCreditor PartyRole = "creditor"
	PartyDebtor   PartyRole = "debtor"
)

// Party is a creditor or debtor. Phone and ResidentNo hold unmasked values;
// masking is applied at the presentation boundary, never in storage.
type Party struct {
	ID         string    `json:"id"`
	Role       PartyRole `json:"role"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	ResidentNo string    `json:"resident_no"`
	Address    string    `json:"address"`
	CreatedAt  time.Time `json:"created_at"`
}
