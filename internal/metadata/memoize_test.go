package metadata

import (
	"errors"
	"testing"
	"time"
)

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Metadata(date time.Time) (DayMetadata, error) {
	p.calls++
	if p.err != nil {
		return DayMetadata{}, p.err
	}
	return DayMetadata{LunarLabel: date.Format("01-02")}, nil
}

func TestMemoized_ResolvesEachDateOnce(t *testing.T) {
	t.Parallel()

	source := &countingProvider{}
	provider, err := NewMemoized(source, 16)
	if err != nil {
		t.Fatalf("NewMemoized returned error: %v", err)
	}

	date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		meta, err := provider.Metadata(date)
		if err != nil {
			t.Fatalf("Metadata returned error: %v", err)
		}
		if meta.LunarLabel != "05-01" {
			t.Fatalf("unexpected metadata: %+v", meta)
		}
	}
	// Same calendar day at a different clock time still hits the cache.
	if _, err := provider.Metadata(date.Add(13 * time.Hour)); err != nil {
		t.Fatalf("Metadata returned error: %v", err)
	}

	if source.calls != 1 {
		t.Fatalf("expected a single source lookup, got %d", source.calls)
	}
}

func TestMemoized_DoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	source := &countingProvider{err: errors.New("source offline")}
	provider, err := NewMemoized(source, 0)
	if err != nil {
		t.Fatalf("NewMemoized returned error: %v", err)
	}

	date := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	if _, err := provider.Metadata(date); err == nil {
		t.Fatal("expected the source error to surface")
	}

	source.err = nil
	if _, err := provider.Metadata(date); err != nil {
		t.Fatalf("expected a retry after the source recovered, got %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected two source lookups, got %d", source.calls)
	}
}

func TestMemoized_BoundedEviction(t *testing.T) {
	t.Parallel()

	source := &countingProvider{}
	provider, err := NewMemoized(source, 1)
	if err != nil {
		t.Fatalf("NewMemoized returned error: %v", err)
	}

	first := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 1)

	for _, date := range []time.Time{first, second, first} {
		if _, err := provider.Metadata(date); err != nil {
			t.Fatalf("Metadata returned error: %v", err)
		}
	}

	// The second lookup evicted the first, so revisiting it re-resolves.
	if source.calls != 3 {
		t.Fatalf("expected three source lookups, got %d", source.calls)
	}
}

func TestWeekends(t *testing.T) {
	t.Parallel()

	saturday := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	monday := time.Date(2024, time.May, 6, 0, 0, 0, 0, time.UTC)

	meta, err := Weekends().Metadata(saturday)
	if err != nil {
		t.Fatalf("Metadata returned error: %v", err)
	}
	if !meta.RestDay {
		t.Fatal("expected Saturday to be a rest day")
	}

	meta, err = Weekends().Metadata(monday)
	if err != nil {
		t.Fatalf("Metadata returned error: %v", err)
	}
	if meta.RestDay {
		t.Fatal("expected Monday to be a working day")
	}
}
