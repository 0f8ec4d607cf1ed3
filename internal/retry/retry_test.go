package retry

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/maayanb/amuta-ledger/internal/logger"
)

var errQuota = errors.New("quota exceeded")

func testPolicy(attempts int) Policy {
	return Policy{
		MaxAttempts: attempts,
		Delay:       time.Millisecond,
		Retryable:   func(err error) bool { return errors.Is(err, errQuota) },
		Log:         logger.NewWithWriter(io.Discard),
	}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), "list", func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesQuotaErrors(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), "append", func() error {
		calls++
		if calls < 3 {
			return errQuota
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := testPolicy(3).Do(context.Background(), "append", func() error {
		calls++
		return errQuota
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, errQuota) {
		t.Errorf("expected wrapped quota error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_NonRetryablePropagatesImmediately(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := testPolicy(3).Do(context.Background(), "update", func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestDo_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := testPolicy(3)
	p.Delay = time.Minute

	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, "list", func() error { return errQuota })
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}
