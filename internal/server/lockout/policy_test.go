package lockout

import (
	"testing"
	"time"

	"github.com/dkachan/equiadmin/internal/server/models"
)

func TestEvaluate_AdminLockWinsOverTimed(t *testing.T) {
	t.Parallel()

	expired := time.Now().Add(-time.Hour)
	a := &models.Account{LockState: models.LockStateAdmin, LockExpiresAt: &expired}

	if got := Evaluate(a, time.Now()); got != models.LockStateAdmin {
		t.Fatalf("admin lock must not expire, got %s", got)
	}
}

func TestEvaluate_TimedLockExpiresLazily(t *testing.T) {
	t.Parallel()

	now := time.Now()
	future := now.Add(10 * time.Minute)
	past := now.Add(-time.Minute)

	locked := &models.Account{LockState: models.LockStateTimed, LockExpiresAt: &future}
	if got := Evaluate(locked, now); got != models.LockStateTimed {
		t.Fatalf("unexpired timed lock must hold, got %s", got)
	}

	expired := &models.Account{LockState: models.LockStateTimed, LockExpiresAt: &past}
	if got := Evaluate(expired, now); got != models.LockStateOpen {
		t.Fatalf("expired timed lock must read as open, got %s", got)
	}
}

func TestRegisterFailure_ThirdFailureLocks(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := &models.Account{LockState: models.LockStateOpen}

	for i := 1; i <= 2; i++ {
		r := RegisterFailure(a, now)
		if r.LockState != models.LockStateOpen {
			t.Fatalf("attempt %d must not lock, got %s", i, r.LockState)
		}
		if r.Remaining != MaxFailedAttempts-i {
			t.Fatalf("attempt %d: remaining = %d, want %d", i, r.Remaining, MaxFailedAttempts-i)
		}
		a.FailedAttempts = r.FailedAttempts
	}

	r := RegisterFailure(a, now)
	if r.LockState != models.LockStateTimed {
		t.Fatalf("third failure must impose a timed lock, got %s", r.LockState)
	}
	if r.Remaining != 0 {
		t.Fatalf("remaining after lock = %d, want 0", r.Remaining)
	}
	if r.LockExpiresAt == nil || !r.LockExpiresAt.Equal(now.Add(LockDuration)) {
		t.Fatalf("lock expiry = %v, want now+%v", r.LockExpiresAt, LockDuration)
	}
}

func TestRegisterFailure_AfterExpiryStartsFreshSeries(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Minute)
	a := &models.Account{
		LockState:      models.LockStateTimed,
		FailedAttempts: MaxFailedAttempts,
		LockExpiresAt:  &past,
	}

	r := RegisterFailure(a, now)
	if r.FailedAttempts != 1 {
		t.Fatalf("failure after expiry must restart counting, got %d", r.FailedAttempts)
	}
	if r.LockState != models.LockStateOpen {
		t.Fatalf("single failure after expiry must not re-lock, got %s", r.LockState)
	}
}
