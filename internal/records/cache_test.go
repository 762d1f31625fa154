package records

import (
	"context"
	"testing"
)

func TestSummaryKeyStableForEqualStates(t *testing.T) {
	cache := NewCache(nil, 0)
	ctx := context.Background()

	state := FilterState{Search: "  Ani ", DateFrom: "2024-03-01", DateTo: "2024-03-31"}
	first, err := cache.SummaryKey(ctx, 7, state)
	if err != nil {
		t.Fatalf("summary key: %v", err)
	}
	second, err := cache.SummaryKey(ctx, 7, state)
	if err != nil {
		t.Fatalf("summary key: %v", err)
	}
	if first != second {
		t.Fatalf("keys differ for equal states: %q vs %q", first, second)
	}
}

func TestSummaryKeyDistinguishesStates(t *testing.T) {
	cache := NewCache(nil, 0)
	ctx := context.Background()

	pairs := []struct {
		name string
		a, b FilterState
	}{
		{
			name: "bound content shifted across separator",
			a:    FilterState{DateFrom: "a:b", DateTo: "c"},
			b:    FilterState{DateFrom: "a", DateTo: "b:c"},
		},
		{
			name: "search leaking into date bound",
			a:    FilterState{Search: "x:2024-01-01"},
			b:    FilterState{Search: "x", DateFrom: "2024-01-01"},
		},
		{
			name: "swapped bounds",
			a:    FilterState{DateFrom: "2024-01-01", DateTo: "2024-02-01"},
			b:    FilterState{DateFrom: "2024-02-01", DateTo: "2024-01-01"},
		},
	}

	for _, tc := range pairs {
		keyA, err := cache.SummaryKey(ctx, 7, tc.a)
		if err != nil {
			t.Fatalf("%s: summary key: %v", tc.name, err)
		}
		keyB, err := cache.SummaryKey(ctx, 7, tc.b)
		if err != nil {
			t.Fatalf("%s: summary key: %v", tc.name, err)
		}
		if keyA == keyB {
			t.Fatalf("%s: distinct states share key %q", tc.name, keyA)
		}
	}
}

func TestSummaryKeyScopedToOwner(t *testing.T) {
	cache := NewCache(nil, 0)
	ctx := context.Background()

	state := FilterState{Search: "ani"}
	mine, err := cache.SummaryKey(ctx, 7, state)
	if err != nil {
		t.Fatalf("summary key: %v", err)
	}
	theirs, err := cache.SummaryKey(ctx, 8, state)
	if err != nil {
		t.Fatalf("summary key: %v", err)
	}
	if mine == theirs {
		t.Fatalf("owners share key %q", mine)
	}
}
