package records

import (
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{ID: "1", Name: "John", Surname: "Doe", Mobile: "+1 202 555 0147", Date: "2024-03-10", Money: 100},
		{ID: "2", Name: "გიორგი", Surname: "ბერიძე", Mobile: "+995 555 123 456", Date: "2024-03-12", Money: 250},
		{ID: "3", Name: "Ann", Surname: "Smith", Mobile: "+44 20 7946 0123", Date: "2024-02-28", Money: 80},
	}
}

func ids(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.ID)
	}
	return out
}

func TestFilterEmptyStateIsIdentity(t *testing.T) {
	recs := sampleRecords()
	got := Filter(recs, FilterState{})
	if !reflect.DeepEqual(ids(got), []string{"1", "2", "3"}) {
		t.Fatalf("empty state changed the set: %v", ids(got))
	}
}

func TestFilterSearchMatchesNameSurnameMobile(t *testing.T) {
	recs := sampleRecords()

	cases := []struct {
		query string
		want  []string
	}{
		{"john", []string{"1"}},
		{"  DOE  ", []string{"1"}},
		{"0147", []string{"1"}},
		{"ბერ", []string{"2"}},
		{"hn do", []string{"1"}},     // substring spans the name/surname join
		{"jo do", nil},               // not a contiguous substring
		{"nosuchclient", nil},
	}
	for _, tc := range cases {
		got := Filter(recs, FilterState{Search: tc.query})
		if !reflect.DeepEqual(ids(got), tc.want) && !(len(got) == 0 && len(tc.want) == 0) {
			t.Fatalf("query %q: got %v want %v", tc.query, ids(got), tc.want)
		}
	}
}

func TestFilterDateBoundsInclusive(t *testing.T) {
	recs := sampleRecords()

	got := Filter(recs, FilterState{DateFrom: "2024-03-10", DateTo: "2024-03-12"})
	if !reflect.DeepEqual(ids(got), []string{"1", "2"}) {
		t.Fatalf("inclusive bounds: got %v", ids(got))
	}

	got = Filter(recs, FilterState{DateFrom: "2024-03-01"})
	if !reflect.DeepEqual(ids(got), []string{"1", "2"}) {
		t.Fatalf("open upper bound: got %v", ids(got))
	}

	got = Filter(recs, FilterState{DateTo: "2024-02-28"})
	if !reflect.DeepEqual(ids(got), []string{"3"}) {
		t.Fatalf("open lower bound: got %v", ids(got))
	}
}

func TestFilterOutOfOrderBoundsMatchNothing(t *testing.T) {
	got := Filter(sampleRecords(), FilterState{DateFrom: "2024-03-12", DateTo: "2024-03-10"})
	if len(got) != 0 {
		t.Fatalf("expected empty result, got %v", ids(got))
	}
}

func TestFilterConjunction(t *testing.T) {
	recs := sampleRecords()
	got := Filter(recs, FilterState{Search: "doe", DateFrom: "2024-03-11"})
	if len(got) != 0 {
		t.Fatalf("search matched but date should exclude: %v", ids(got))
	}
	got = Filter(recs, FilterState{Search: "doe", DateFrom: "2024-03-01", DateTo: "2024-03-31"})
	if !reflect.DeepEqual(ids(got), []string{"1"}) {
		t.Fatalf("conjunction: got %v", ids(got))
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	recs := sampleRecords()
	_ = Filter(recs, FilterState{Search: "ann"})
	if !reflect.DeepEqual(ids(recs), []string{"1", "2", "3"}) {
		t.Fatalf("input slice mutated: %v", ids(recs))
	}
}
