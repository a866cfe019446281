package postgresadapter

import (
	"encoding/json"
	"time"

	"splitvault/contexts/treasury-core/revenue-split-service/domain/entities"
	"splitvault/contexts/treasury-core/revenue-split-service/ports"
)

type treasuryPayeeModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Position      int       `gorm:"column:position;uniqueIndex"`
	ShareWeight   int64     `gorm:"column:share_weight"`
	ReleasedTotal int64     `gorm:"column:released_total"`
	AddedAt       time.Time `gorm:"column:added_at"`
}

func (treasuryPayeeModel) TableName() string {
	return "treasury_payees"
}

func (m treasuryPayeeModel) toEntity() entities.Payee {
	return entities.Payee{
		ID:            m.ID,
		ShareWeight:   m.ShareWeight,
		ReleasedTotal: m.ReleasedTotal,
		AddedAt:       m.AddedAt.UTC(),
	}
}

// treasuryLedgerModel is a singleton row: pooled balance, lifetime counters,
// and the write-once registry flag live together so one row lock serializes
// every mutation.
type treasuryLedgerModel struct {
	ID                    int        `gorm:"column:id;primaryKey"`
	PoolBalance           int64      `gorm:"column:pool_balance"`
	TotalReleased         int64      `gorm:"column:total_released"`
	FeePoolTotal          int64      `gorm:"column:fee_pool_total"`
	TotalShares           int64      `gorm:"column:total_shares"`
	RegistryInitialized   bool       `gorm:"column:registry_initialized"`
	RegistryInitializedAt *time.Time `gorm:"column:registry_initialized_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
}

func (treasuryLedgerModel) TableName() string {
	return "treasury_ledger"
}

func (m treasuryLedgerModel) toTotals() entities.LedgerTotals {
	return entities.LedgerTotals{
		PoolBalance:   m.PoolBalance,
		TotalReleased: m.TotalReleased,
		FeePoolTotal:  m.FeePoolTotal,
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

type treasuryInvestorModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	Position     int        `gorm:"column:position;uniqueIndex"`
	FeeOwed      int64      `gorm:"column:fee_owed"`
	Status       string     `gorm:"column:status"`
	RegisteredAt time.Time  `gorm:"column:registered_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	SettledAt    *time.Time `gorm:"column:settled_at"`
}

func (treasuryInvestorModel) TableName() string {
	return "treasury_investors"
}

func (m treasuryInvestorModel) toEntity() entities.InvestorRecord {
	return entities.InvestorRecord{
		ID:           m.ID,
		FeeOwed:      m.FeeOwed,
		Status:       entities.InvestorStatus(m.Status),
		RegisteredAt: m.RegisteredAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
		SettledAt:    normalizeOptionalTime(m.SettledAt),
	}
}

type treasuryOutboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (treasuryOutboxModel) TableName() string {
	return "treasury_outbox"
}

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	t := value.UTC()
	return &t
}
