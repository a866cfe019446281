package ports

import (
	"context"
	"time"

	contractsv1 "splitvault/contracts/gen/events/v1"
	"splitvault/contexts/treasury-core/revenue-split-service/domain/entities"
)

// Repository is the persistence boundary. Every mutating method is a single
// atomic unit: it either commits the whole change or leaves state untouched.
type Repository interface {
	InitializeRegistry(ctx context.Context, payees []entities.Payee) error
	GetRegistry(ctx context.Context) (entities.Registry, error)
	GetPayee(ctx context.Context, payeeID string) (entities.Payee, error)
	PayeeAt(ctx context.Context, index int) (entities.Payee, error)
	ListPayees(ctx context.Context) ([]entities.Payee, error)

	GetLedger(ctx context.Context) (entities.LedgerTotals, error)
	RecordDeposit(ctx context.Context, amount int64) (entities.LedgerTotals, error)
	ApplyRelease(ctx context.Context, payeeID string, amount int64) error

	AddInvestorFee(ctx context.Context, investorID string, amount int64) (entities.InvestorRecord, error)
	GetInvestor(ctx context.Context, investorID string) (entities.InvestorRecord, error)
	ListInvestors(ctx context.Context) ([]entities.InvestorRecord, error)
	SettleInvestorFee(ctx context.Context, investorID string) (entities.InvestorRecord, error)
}

// AuthorizationGate is the single privileged-caller capability gating
// administrative operations. The core only consumes the boolean answer.
type AuthorizationGate interface {
	IsAuthorized(ctx context.Context, callerID string) (bool, error)
}

// AssetTransfer atomically moves value out of the pool to a destination.
// A returned error means nothing moved; failure is fatal to the caller's
// operation and is never retried at this layer.
type AssetTransfer interface {
	Transfer(ctx context.Context, destination string, amount int64) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
