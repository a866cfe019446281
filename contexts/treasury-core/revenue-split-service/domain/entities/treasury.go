package entities

import "time"

type InvestorStatus string

const (
	InvestorStatusActive  InvestorStatus = "active"
	InvestorStatusCleared InvestorStatus = "cleared"
)

// Payee is a registered stakeholder entitled to a proportional share of
// distributed funds. Identity and weight are fixed at initialization;
// ReleasedTotal only grows.
type Payee struct {
	ID            string
	ShareWeight   int64
	ReleasedTotal int64
	AddedAt       time.Time
}

// Registry is the write-once share registry state.
type Registry struct {
	Initialized   bool
	TotalShares   int64
	PayeeCount    int
	InitializedAt *time.Time
}

// LedgerTotals is the pooled balance plus lifetime counters. Lifetime
// receipts reconstruct as PoolBalance + TotalReleased.
type LedgerTotals struct {
	PoolBalance   int64
	TotalReleased int64
	FeePoolTotal  int64
	UpdatedAt     time.Time
}

func (l LedgerTotals) TotalReceived() int64 {
	return l.PoolBalance + l.TotalReleased
}

// InvestorRecord tracks fees owed to a prior contributor. Records are never
// removed; settlement zeroes FeeOwed and flips Status to cleared so repeat
// reimbursement runs skip them.
type InvestorRecord struct {
	ID           string
	FeeOwed      int64
	Status       InvestorStatus
	RegisteredAt time.Time
	UpdatedAt    time.Time
	SettledAt    *time.Time
}
