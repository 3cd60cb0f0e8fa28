package store

import (
	"errors"
	"testing"
	"time"

	"github.com/gmtavares/stockex/internal/domain"
)

func newInstrument(id, name string) *domain.Instrument {
	return &domain.Instrument{
		ID:              id,
		Name:            name,
		ReferencePrice:  15000,
		AvailableSupply: 1000,
		CreatedAt:       time.Now(),
	}
}

func TestInstrumentStore_CreateAndGet(t *testing.T) {
	s := NewInstrumentStore()

	if err := s.Create(newInstrument("AAPL", "Apple Inc.")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inst, err := s.Get("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inst.Name != "Apple Inc." {
		t.Errorf("Name = %q, want %q", inst.Name, "Apple Inc.")
	}
}

func TestInstrumentStore_CreateDuplicate(t *testing.T) {
	s := NewInstrumentStore()
	_ = s.Create(newInstrument("AAPL", "Apple Inc."))

	err := s.Create(newInstrument("AAPL", "Apple again"))
	if !errors.Is(err, domain.ErrInstrumentAlreadyExists) {
		t.Errorf("expected ErrInstrumentAlreadyExists, got %v", err)
	}
}

func TestInstrumentStore_GetNotFound(t *testing.T) {
	s := NewInstrumentStore()

	if _, err := s.Get("MSFT"); !errors.Is(err, domain.ErrInstrumentNotFound) {
		t.Errorf("expected ErrInstrumentNotFound, got %v", err)
	}
}

func TestInstrumentStore_List_CreationOrder(t *testing.T) {
	s := NewInstrumentStore()
	_ = s.Create(newInstrument("MSFT", "Microsoft"))
	_ = s.Create(newInstrument("AAPL", "Apple Inc."))
	_ = s.Create(newInstrument("GOOG", "Alphabet"))

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 instruments, got %d", len(list))
	}
	want := []string{"MSFT", "AAPL", "GOOG"}
	for i, inst := range list {
		if inst.ID != want[i] {
			t.Errorf("list[%d] = %s, want %s", i, inst.ID, want[i])
		}
	}
}
