package parties

import (
	"errors"
	"time"
)

// Party is a customer or supplier master record. The billing engine consumes
// parties read-only; mutation belongs to the masterdata CRUD surface.
type Party struct {
	ID        int64     `json:"id"`
	FirmID    int64     `json:"firm_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	GSTIN     string    `json:"gstin"`
	State     string    `json:"state"`
	StateCode string    `json:"state_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrPartyNotFound indicates the party does not exist or belongs to another firm.
var ErrPartyNotFound = errors.New("parties: party not found")
