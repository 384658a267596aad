package interview

import (
	"context"
	"testing"
)

func TestInflightRegisterAndCancel(t *testing.T) {
	r := newInflight()

	ctx1, release1 := r.register(context.Background(), "s1")
	ctx2, release2 := r.register(context.Background(), "s1")
	other, releaseOther := r.register(context.Background(), "s2")
	defer releaseOther()

	if got := r.count("s1"); got != 2 {
		t.Fatalf("count(s1) = %d, want 2", got)
	}
	if got := r.cancel("s1"); got != 2 {
		t.Errorf("cancel(s1) = %d, want 2", got)
	}
	if ctx1.Err() == nil || ctx2.Err() == nil {
		t.Error("registered contexts not cancelled")
	}
	if other.Err() != nil {
		t.Error("unrelated session cancelled")
	}

	release1()
	release2()
	if got := r.count("s1"); got != 0 {
		t.Errorf("count(s1) after release = %d", got)
	}
}

func TestInflightReleaseCancelsContext(t *testing.T) {
	r := newInflight()
	ctx, release := r.register(context.Background(), "s1")
	release()

	if ctx.Err() == nil {
		t.Error("context still live after release")
	}
	if got := r.cancel("s1"); got != 0 {
		t.Errorf("cancel after release stopped %d calls", got)
	}
}
