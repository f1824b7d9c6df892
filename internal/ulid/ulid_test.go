package ulid

import (
	"strings"
	"testing"
	"time"
)

func TestNew_Format(t *testing.T) {
	id := New()
	if len(id) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
	}
	for _, r := range id {
		if !strings.ContainsRune(crockford, r) {
			t.Errorf("unexpected character %q in %q", r, id)
		}
	}
}

func TestNew_SortsByCreation(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	prev := newAt(now)
	for i := 0; i < 100; i++ {
		id := newAt(now)
		if id <= prev {
			t.Fatalf("expected %q > %q", id, prev)
		}
		prev = id
	}
	later := newAt(now.Add(time.Millisecond))
	if later <= prev {
		t.Errorf("expected later timestamp to sort after, got %q <= %q", later, prev)
	}
}

func TestEncode(t *testing.T) {
	var zero [16]byte
	if got := encode(zero); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}

	var full [16]byte
	for i := range full {
		full[i] = 0xff
	}
	if got := encode(full); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("expected 7ZZZ..., got %q", got)
	}
}
