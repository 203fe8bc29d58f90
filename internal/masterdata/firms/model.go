package firms

import (
	"errors"
	"time"
)

// Firm is the tenant boundary. Every record in the system is scoped by a
// firm id; firms themselves are provisioned out of band and read-only here.
type Firm struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	GSTIN     string    `json:"gstin"`
	StateCode string    `json:"state_code"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrFirmNotFound indicates a missing firm.
var ErrFirmNotFound = errors.New("firms: firm not found")
