package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// TradeSide is the direction of a trade.
type TradeSide string

const (
	TradeSideLong  TradeSide = "LONG"
	TradeSideShort TradeSide = "SHORT"
)

// Trade is the leaf content of a batch's Merkle tree: one finalized trade
// record produced by the off-system execution venue. Field order in
// CanonicalString must match the off-system tree builder exactly or every
// membership proof fails.
type Trade struct {
	TraderID   uuid.UUID `json:"trader_id"`
	TradeID    string    `json:"trade_id"`
	Symbol     string    `json:"symbol"`
	Side       TradeSide `json:"side"`
	Size       int64     `json:"size"`
	EntryPrice int64     `json:"entry_price"`
	ExitPrice  int64     `json:"exit_price"`
	PnL        int64     `json:"pnl"` // Signed, smallest unit
	Fee        int64     `json:"fee"`
	Timestamp  int64     `json:"timestamp"` // Unix seconds
}

// CanonicalString returns the canonical leaf encoding:
// TRADER|TRADE|SYMBOL|SIDE|SIZE|ENTRY|EXIT|PNL|FEE|TIMESTAMP
func (t *Trade) CanonicalString() string {
	return fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d|%d|%d|%d",
		t.TraderID.String(), t.TradeID, t.Symbol, t.Side,
		t.Size, t.EntryPrice, t.ExitPrice, t.PnL, t.Fee, t.Timestamp)
}
