// Package counters declares the repository contract for allocator sequence
// counters.
package counters

import "context"

// AccountLoginIDCounter is the counter namespace used for display
// identifier allocation.
const AccountLoginIDCounter = "account_login_id"

// Repository defines operations over named sequence counters. Counters are
// written only by the identifier allocator.
type Repository interface {
	// Get returns the current value of a counter, or 0 when the counter
	// does not exist yet.
	Get(ctx context.Context, name string) (int64, error)

	// Set durably records the counter value, creating the row if needed.
	Set(ctx context.Context, name string, value int64) error
}
