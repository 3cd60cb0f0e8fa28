package store

import "github.com/gmtavares/stockex/internal/domain"

// Settlement describes the transfer executed for a single match: the
// buyer pays price times quantity and receives the instrument, the seller's
// locked inventory is released and reduced, and the seller receives the
// cash.
type Settlement struct {
	BuyerID      int64
	SellerID     int64
	InstrumentID string
	Quantity     int64
	Price        int64 // execution price in cents
}

// Settle applies the full transfer for one match under a single write
// lock, so no concurrent read can observe a partially applied state.
//
// The hold release uses the trade amount, not the buy order's limit
// amount. When a buy fills below its limit the difference stays held;
// see DESIGN.md.
//
// A step failure, such as insufficient inventory despite a prior lock or
// a hold going negative, indicates corrupted bookkeeping and surfaces as
// a fatal InconsistencyError. The ledger must not be trusted after such
// an error.
func (s *LedgerStore) Settle(st Settlement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	buyer, ok := s.accounts[st.BuyerID]
	if !ok {
		return domain.Inconsistencyf(st.BuyerID, "buyer vanished mid-settlement")
	}
	seller, ok := s.accounts[st.SellerID]
	if !ok {
		return domain.Inconsistencyf(st.SellerID, "seller vanished mid-settlement")
	}

	amount := st.Price * st.Quantity

	// Buyer: pay, release the consumed hold, take delivery.
	buyer.Balance -= amount
	if err := adjustHoldLocked(buyer, -amount); err != nil {
		return err
	}
	upsertPositionOnAcquireLocked(buyer, st.InstrumentID, st.Quantity, st.Price)

	// Seller: unlock before reducing, so the lock never exceeds the
	// quantity at an intermediate step, then collect the cash.
	pos, ok := seller.Positions[st.InstrumentID]
	if !ok {
		return domain.Inconsistencyf(seller.ID, "no %s position despite a prior lock", st.InstrumentID)
	}
	if err := adjustPositionLockLocked(seller, pos, st.InstrumentID, -st.Quantity); err != nil {
		return err
	}
	if err := adjustPositionQuantityLocked(seller, pos, st.InstrumentID, -st.Quantity); err != nil {
		return err
	}
	seller.Balance += amount

	// Both parties must leave settlement in a legal state.
	if err := checkInvariantsLocked(buyer); err != nil {
		return err
	}
	return checkInvariantsLocked(seller)
}
