package testutil

import (
	"github.com/google/uuid"
)

// Fixed identifiers for deterministic testing.
var (
	TestBorrowerID1 = "00000000-0000-0000-0000-000000000001"
	TestBorrowerID2 = "00000000-0000-0000-0000-000000000002"
)

// NewBorrowerID returns a fresh borrower identifier so integration tests
// sharing one database never collide.
func NewBorrowerID() string {
	return uuid.NewString()
}
