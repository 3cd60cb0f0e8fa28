package store

import (
	"errors"
	"testing"

	"github.com/gmtavares/stockex/internal/domain"
)

func TestOrderStore_Create_SequentialIDsAndPendingStatus(t *testing.T) {
	s := NewOrderStore()

	o1 := s.Create(1, "AAPL", domain.OrderSideBuy, 5000, 10)
	o2 := s.Create(2, "AAPL", domain.OrderSideSell, 5000, 10)

	if o1.ID != 1 || o2.ID != 2 {
		t.Errorf("expected sequential ids 1, 2, got %d, %d", o1.ID, o2.ID)
	}
	if o1.Status != domain.OrderStatusPendingAtExchange {
		t.Errorf("Status = %s, want pending_at_exchange", o1.Status)
	}
	if o1.Quantity != 10 || o1.Price != 5000 {
		t.Errorf("order = %+v, want price 5000 quantity 10", o1)
	}
}

func TestOrderStore_Get(t *testing.T) {
	s := NewOrderStore()
	o := s.Create(1, "AAPL", domain.OrderSideBuy, 5000, 10)

	got, err := s.Get(o.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != o.ID {
		t.Errorf("Get returned order %d, want %d", got.ID, o.ID)
	}

	if _, err := s.Get(99); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderStore_MarkDone(t *testing.T) {
	s := NewOrderStore()
	o := s.Create(1, "AAPL", domain.OrderSideBuy, 5000, 10)

	if err := s.MarkDone(o.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := s.Get(o.ID)
	if got.Status != domain.OrderStatusDone {
		t.Errorf("Status = %s, want done", got.Status)
	}

	if err := s.MarkDone(99); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Errorf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderStore_ListByAccount_SubmissionOrder(t *testing.T) {
	s := NewOrderStore()
	s.Create(1, "AAPL", domain.OrderSideBuy, 5000, 10)
	s.Create(2, "AAPL", domain.OrderSideSell, 5000, 10)
	s.Create(1, "GOOG", domain.OrderSideBuy, 9000, 3)
	s.Create(1, "AAPL", domain.OrderSideSell, 5100, 2)

	orders := s.ListByAccount(1)
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	wantIDs := []int64{1, 3, 4}
	for i, o := range orders {
		if o.ID != wantIDs[i] {
			t.Errorf("orders[%d].ID = %d, want %d", i, o.ID, wantIDs[i])
		}
	}
}

func TestOrderStore_ListByAccount_Empty(t *testing.T) {
	s := NewOrderStore()

	orders := s.ListByAccount(42)
	if orders == nil || len(orders) != 0 {
		t.Errorf("expected empty slice, got %v", orders)
	}
}
