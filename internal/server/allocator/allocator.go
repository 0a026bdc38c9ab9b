// Package allocator hands out compact 5-digit display identifiers for
// administrator accounts, reusing freed numbers where safe.
package allocator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dkachan/equiadmin/internal/common"
	"github.com/dkachan/equiadmin/internal/server/repositories/accounts"
	"github.com/dkachan/equiadmin/internal/server/repositories/counters"
)

const (
	// Floor is the reserved display identifier of the bootstrap account.
	// Allocated identifiers are always strictly greater.
	Floor = 10000

	// BootstrapLoginID is Floor formatted as a display identifier.
	BootstrapLoginID = "10000"
)

// Allocator computes the next free display identifier from the existing
// account set and durably records its sequence counter before handing the
// identifier out. It performs no cross-row transaction; the uniqueness
// constraint on accounts.login_id is the last-resort conflict detector and
// losers of a race are expected to retry with a fresh allocation.
type Allocator struct {
	accounts accounts.Repository
	counters counters.Repository
}

func New(accounts accounts.Repository, counters counters.Repository) *Allocator {
	return &Allocator{accounts: accounts, counters: counters}
}

// Allocate returns a display identifier unique among all accounts at the
// time of the scan. The lowest freed identifier below the current maximum
// is a candidate, but it is only used while no account holds a higher
// identifier; otherwise allocation continues past the maximum.
func (a *Allocator) Allocate(ctx context.Context) (string, error) {
	ids, err := a.accounts.ListLoginIDs(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorAllocation, err)
	}

	taken := make([]int, 0, len(ids))
	for _, id := range ids {
		n, err := strconv.Atoi(id)
		if err != nil {
			return "", fmt.Errorf("%w: malformed login id %q", common.ErrorAllocation, id)
		}
		if n > Floor {
			taken = append(taken, n)
		}
	}

	chosen := Floor + 1
	if len(taken) > 0 {
		max := taken[len(taken)-1]

		// Walk upward from the floor; the first unclaimed value is the
		// candidate gap.
		candidate := Floor + 1
		for _, n := range taken {
			if n > candidate {
				break
			}
			candidate = n + 1
		}

		if candidate > max {
			chosen = candidate
		} else {
			// The gap sits below a still-existing higher identifier; a
			// concurrent allocation may already have claimed it, so skip
			// past the maximum instead.
			chosen = max + 1
		}
	}

	if err := a.counters.Set(ctx, counters.AccountLoginIDCounter, int64(chosen-Floor)); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorAllocation, err)
	}

	return strconv.Itoa(chosen), nil
}
