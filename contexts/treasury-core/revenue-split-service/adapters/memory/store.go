package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"splitvault/contexts/treasury-core/revenue-split-service/domain/entities"
	domainerrors "splitvault/contexts/treasury-core/revenue-split-service/domain/errors"
	"splitvault/contexts/treasury-core/revenue-split-service/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
	PublishedAt  *time.Time
}

// Store keeps the whole treasury state behind one mutex so every mutating
// repository call commits as a unit or not at all.
type Store struct {
	mu sync.RWMutex

	registry  entities.Registry
	payees    map[string]entities.Payee
	payeeList []string
	ledger    entities.LedgerTotals

	investors    map[string]entities.InvestorRecord
	investorList []string

	outbox map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		payees:    make(map[string]entities.Payee),
		investors: make(map[string]entities.InvestorRecord),
		outbox:    make(map[string]outboxRecord),
	}
}

func (s *Store) InitializeRegistry(_ context.Context, payees []entities.Payee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.registry.Initialized {
		return domainerrors.ErrRegistryAlreadyInitialized
	}
	if len(payees) == 0 {
		return domainerrors.ErrMismatchedShareInput
	}

	staged := make(map[string]entities.Payee, len(payees))
	order := make([]string, 0, len(payees))
	var totalShares int64
	for _, payee := range payees {
		id := strings.TrimSpace(payee.ID)
		if id == "" || payee.ShareWeight <= 0 {
			return domainerrors.ErrInvalidPayeeInput
		}
		if _, dup := staged[id]; dup {
			return domainerrors.ErrPayeeExists
		}
		payee.ID = id
		payee.ReleasedTotal = 0
		staged[id] = payee
		order = append(order, id)
		totalShares += payee.ShareWeight
	}

	now := time.Now().UTC()
	s.payees = staged
	s.payeeList = order
	s.registry = entities.Registry{
		Initialized:   true,
		TotalShares:   totalShares,
		PayeeCount:    len(order),
		InitializedAt: &now,
	}
	return nil
}

func (s *Store) GetRegistry(_ context.Context) (entities.Registry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry, nil
}

func (s *Store) GetPayee(_ context.Context, payeeID string) (entities.Payee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payee, ok := s.payees[strings.TrimSpace(payeeID)]
	if !ok {
		return entities.Payee{}, domainerrors.ErrPayeeNotFound
	}
	return payee, nil
}

func (s *Store) PayeeAt(_ context.Context, index int) (entities.Payee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.payeeList) {
		return entities.Payee{}, domainerrors.ErrPayeeIndexOutOfRange
	}
	return s.payees[s.payeeList[index]], nil
}

func (s *Store) ListPayees(_ context.Context) ([]entities.Payee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payees := make([]entities.Payee, 0, len(s.payeeList))
	for _, id := range s.payeeList {
		payees = append(payees, s.payees[id])
	}
	return payees, nil
}

func (s *Store) GetLedger(_ context.Context) (entities.LedgerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger, nil
}

func (s *Store) RecordDeposit(_ context.Context, amount int64) (entities.LedgerTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount <= 0 {
		return entities.LedgerTotals{}, domainerrors.ErrInvalidDepositInput
	}
	s.ledger.PoolBalance += amount
	s.ledger.UpdatedAt = time.Now().UTC()
	return s.ledger, nil
}

func (s *Store) ApplyRelease(_ context.Context, payeeID string, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payee, ok := s.payees[strings.TrimSpace(payeeID)]
	if !ok {
		return domainerrors.ErrPayeeNotFound
	}
	if amount <= 0 {
		return domainerrors.ErrNoPaymentDue
	}
	if amount > s.ledger.PoolBalance {
		return domainerrors.ErrInsufficientPoolBalance
	}

	payee.ReleasedTotal += amount
	s.payees[payee.ID] = payee
	s.ledger.PoolBalance -= amount
	s.ledger.TotalReleased += amount
	s.ledger.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) AddInvestorFee(_ context.Context, investorID string, amount int64) (entities.InvestorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.TrimSpace(investorID)
	if id == "" || amount <= 0 {
		return entities.InvestorRecord{}, domainerrors.ErrInvalidInvestorInput
	}

	now := time.Now().UTC()
	record, exists := s.investors[id]
	if !exists {
		record = entities.InvestorRecord{
			ID:           id,
			RegisteredAt: now,
		}
		s.investorList = append(s.investorList, id)
	}
	record.FeeOwed += amount
	record.Status = entities.InvestorStatusActive
	record.UpdatedAt = now
	record.SettledAt = nil
	s.investors[id] = record

	s.ledger.FeePoolTotal += amount
	s.ledger.UpdatedAt = now
	return record, nil
}

func (s *Store) GetInvestor(_ context.Context, investorID string) (entities.InvestorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.investors[strings.TrimSpace(investorID)]
	if !ok {
		return entities.InvestorRecord{}, domainerrors.ErrInvestorNotFound
	}
	return record, nil
}

func (s *Store) ListInvestors(_ context.Context) ([]entities.InvestorRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]entities.InvestorRecord, 0, len(s.investorList))
	for _, id := range s.investorList {
		records = append(records, s.investors[id])
	}
	return records, nil
}

func (s *Store) SettleInvestorFee(_ context.Context, investorID string) (entities.InvestorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.investors[strings.TrimSpace(investorID)]
	if !ok {
		return entities.InvestorRecord{}, domainerrors.ErrInvestorNotFound
	}
	if record.Status != entities.InvestorStatusActive || record.FeeOwed <= 0 {
		return record, nil
	}
	if record.FeeOwed > s.ledger.PoolBalance {
		return entities.InvestorRecord{}, domainerrors.ErrInsufficientPoolBalance
	}

	now := time.Now().UTC()
	s.ledger.PoolBalance -= record.FeeOwed
	s.ledger.FeePoolTotal -= record.FeeOwed
	s.ledger.UpdatedAt = now

	record.FeeOwed = 0
	record.Status = entities.InvestorStatusCleared
	record.UpdatedAt = now
	record.SettledAt = &now
	s.investors[record.ID] = record
	return record, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, exists := s.outbox[outboxID]; exists {
		return nil
	}
	s.outbox[outboxID] = outboxRecord{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.PublishedAt == nil {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return messages, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrOutboxNotFound
	}
	timestamp := publishedAt.UTC()
	row.PublishedAt = &timestamp
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
