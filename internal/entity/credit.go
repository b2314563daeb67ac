package entity

import (
	"database/sql"

	"github.com/drawlab/backend/pkg/enum"
)

type CreditEntryKind string

var (
	CreditPurchase  = enum.New(CreditEntryKind("purchase"))
	CreditDrawUsage = enum.New(CreditEntryKind("draw_usage"))
	CreditRefund    = enum.New(CreditEntryKind("refund"))
	CreditBonus     = enum.New(CreditEntryKind("bonus"))
)

// CreditLedgerEntry is append-only. Corrections are new offsetting entries,
// never updates or deletes.
type CreditLedgerEntry struct {
	SnowFlakeBase

	OwnerID string `gorm:"index"`

	// Amount is positive for credits and negative for debits.
	Amount int64

	Kind   CreditEntryKind
	DrawID sql.NullString
}
