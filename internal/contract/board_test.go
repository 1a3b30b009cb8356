package contract

import (
	"errors"
	"testing"
)

func TestBoard_RequireUnsatisfied(t *testing.T) {
	b := NewBoard()
	err := b.Require("module:users.ubuntu")
	if !errors.Is(err, ErrUnsatisfied) {
		t.Fatalf("err = %v, want ErrUnsatisfied", err)
	}
}

func TestBoard_SatisfyThenRequire(t *testing.T) {
	b := NewBoard()
	b.Satisfy("module:users.ubuntu")

	if err := b.Require("module:users.ubuntu"); err != nil {
		t.Fatalf("Require after Satisfy: %v", err)
	}
	if !b.Satisfied("module:users.ubuntu") {
		t.Error("Satisfied should report true")
	}
	if b.Satisfied("module:other") {
		t.Error("unrelated key should not be satisfied")
	}
}

func TestBoard_SatisfyIsIdempotent(t *testing.T) {
	b := NewBoard()
	b.Satisfy("users.ready")
	b.Satisfy("users.ready")

	keys := b.Keys()
	if len(keys) != 1 || keys[0] != "users.ready" {
		t.Errorf("Keys = %v", keys)
	}
}

func TestBoard_KeysSorted(t *testing.T) {
	b := NewBoard()
	b.Satisfy("zeta")
	b.Satisfy("alpha")
	b.Satisfy("mid")

	keys := b.Keys()
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys = %v, want %v", keys, want)
		}
	}
}
