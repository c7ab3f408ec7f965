package runtime

import (
	"context"
	"testing"
	"time"
)

func TestHandleRefStartsEmpty(t *testing.T) {
	t.Parallel()

	var ref HandleRef
	if ref.Get() != nil {
		t.Fatal("fresh HandleRef must be empty")
	}
	h := NewHandle(nopEngine{}, "m", "cpu", "f16")
	ref.Set(h)
	if ref.Get() != h {
		t.Fatal("Get must return the stored handle")
	}
}

func TestHandleSlotIsExclusive(t *testing.T) {
	t.Parallel()

	h := NewHandle(nopEngine{}, "m", "cpu", "f16")
	if err := h.Acquire(context.Background()); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := h.Acquire(ctx); err == nil {
		t.Fatal("second acquire must block until release")
	}

	h.Release()
	if err := h.Acquire(context.Background()); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	h.Release()
}
