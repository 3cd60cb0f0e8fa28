package store

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gmtavares/stockex/internal/domain"
)

// settleFixture sets up a funded buyer with a hold and a seller with
// locked inventory, ready for one settlement.
func settleFixture(t *testing.T, buyerBalance, holdAmount, sellerQty, lockQty int64) (*LedgerStore, int64, int64) {
	t.Helper()
	s := NewLedgerStore()

	buyer, err := s.CreateAccount(buyerBalance)
	if err != nil {
		t.Fatalf("create buyer: %v", err)
	}
	if err := s.PlaceHold(buyer.ID, holdAmount); err != nil {
		t.Fatalf("place hold: %v", err)
	}

	seller, err := s.CreateAccount(0)
	if err != nil {
		t.Fatalf("create seller: %v", err)
	}
	if err := s.UpsertPositionOnAcquire(seller.ID, "AAPL", sellerQty, 4000); err != nil {
		t.Fatalf("seed seller inventory: %v", err)
	}
	if err := s.LockInventory(seller.ID, "AAPL", lockQty); err != nil {
		t.Fatalf("lock seller inventory: %v", err)
	}

	return s, buyer.ID, seller.ID
}

func TestSettle_FullTransfer(t *testing.T) {
	s, buyerID, sellerID := settleFixture(t, 100000, 50000, 10, 10)

	err := s.Settle(Settlement{
		BuyerID:      buyerID,
		SellerID:     sellerID,
		InstrumentID: "AAPL",
		Quantity:     10,
		Price:        5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buyer, _ := s.Balance(buyerID)
	if buyer.Balance != 50000 {
		t.Errorf("buyer balance = %d, want 50000", buyer.Balance)
	}
	if buyer.HeldAmount != 0 {
		t.Errorf("buyer held = %d, want 0", buyer.HeldAmount)
	}

	buyerPositions, _ := s.Portfolio(buyerID)
	if len(buyerPositions) != 1 || buyerPositions[0].Quantity != 10 {
		t.Fatalf("buyer positions = %+v, want 10 AAPL", buyerPositions)
	}
	if !buyerPositions[0].AvgCost.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("buyer avg cost = %s, want 5000", buyerPositions[0].AvgCost)
	}

	seller, _ := s.Balance(sellerID)
	if seller.Balance != 50000 {
		t.Errorf("seller balance = %d, want 50000", seller.Balance)
	}
	sellerPositions, _ := s.Portfolio(sellerID)
	if sellerPositions[0].Quantity != 0 || sellerPositions[0].LockedInTrade != 0 {
		t.Errorf("seller position = %+v, want fully emptied and unlocked", sellerPositions[0])
	}
}

func TestSettle_PartialFill(t *testing.T) {
	s, buyerID, sellerID := settleFixture(t, 100000, 50000, 10, 10)

	err := s.Settle(Settlement{
		BuyerID:      buyerID,
		SellerID:     sellerID,
		InstrumentID: "AAPL",
		Quantity:     4,
		Price:        5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buyer, _ := s.Balance(buyerID)
	if buyer.Balance != 80000 || buyer.HeldAmount != 30000 {
		t.Errorf("buyer = %+v, want balance 80000 held 30000", buyer)
	}

	sellerPositions, _ := s.Portfolio(sellerID)
	if sellerPositions[0].Quantity != 6 || sellerPositions[0].LockedInTrade != 6 {
		t.Errorf("seller position = %+v, want quantity 6 lock 6", sellerPositions[0])
	}

	if err := s.CheckInvariants(buyerID); err != nil {
		t.Errorf("buyer invariants: %v", err)
	}
	if err := s.CheckInvariants(sellerID); err != nil {
		t.Errorf("seller invariants: %v", err)
	}
}

func TestSettle_ReleasesTradeAmountNotLimitAmount(t *testing.T) {
	// Buyer held 600 for buy 10 @ 60; the fill executes at 55. The hold
	// release is the trade amount (550), so 50 stays held.
	s, buyerID, sellerID := settleFixture(t, 100000, 60000, 10, 10)

	err := s.Settle(Settlement{
		BuyerID:      buyerID,
		SellerID:     sellerID,
		InstrumentID: "AAPL",
		Quantity:     10,
		Price:        5500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	buyer, _ := s.Balance(buyerID)
	if buyer.Balance != 45000 {
		t.Errorf("buyer balance = %d, want 45000", buyer.Balance)
	}
	if buyer.HeldAmount != 5000 {
		t.Errorf("buyer held = %d, want residual 5000", buyer.HeldAmount)
	}
}

func TestSettle_InsufficientLockIsFatal(t *testing.T) {
	// Seller's lock covers only 5 but settlement asks for 8, so the prior
	// bookkeeping must have been corrupted.
	s, buyerID, sellerID := settleFixture(t, 100000, 50000, 10, 5)

	err := s.Settle(Settlement{
		BuyerID:      buyerID,
		SellerID:     sellerID,
		InstrumentID: "AAPL",
		Quantity:     8,
		Price:        5000,
	})

	var inconsistency *domain.InconsistencyError
	if !errors.As(err, &inconsistency) {
		t.Fatalf("expected InconsistencyError, got %v", err)
	}
	if inconsistency.AccountID != sellerID {
		t.Errorf("inconsistency attributed to account %d, want seller %d", inconsistency.AccountID, sellerID)
	}
}

func TestSettle_MissingSellerPositionIsFatal(t *testing.T) {
	s := NewLedgerStore()
	buyer, _ := s.CreateAccount(100000)
	_ = s.PlaceHold(buyer.ID, 50000)
	seller, _ := s.CreateAccount(0)

	err := s.Settle(Settlement{
		BuyerID:      buyer.ID,
		SellerID:     seller.ID,
		InstrumentID: "AAPL",
		Quantity:     1,
		Price:        5000,
	})

	var inconsistency *domain.InconsistencyError
	if !errors.As(err, &inconsistency) {
		t.Fatalf("expected InconsistencyError, got %v", err)
	}
}
