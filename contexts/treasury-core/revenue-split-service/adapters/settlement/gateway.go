package settlement

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"splitvault/contexts/treasury-core/revenue-split-service/ports"
)

// Gateway is the asset-transfer adapter. The current implementation is an
// in-process settlement ledger while runtime wiring is finalized for an
// external payment rail; it records every completed transfer and supports
// per-destination failure injection for exercising abort paths.
type Gateway struct {
	mu        sync.Mutex
	transfers []Transfer
	failFor   map[string]error
	logger    *slog.Logger
}

type Transfer struct {
	Destination string
	Amount      int64
	SentAt      time.Time
}

var errTransferRejected = errors.New("settlement: transfer rejected")

func NewGateway(logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		failFor: make(map[string]error),
		logger:  logger,
	}
}

func (g *Gateway) Transfer(_ context.Context, destination string, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err, fail := g.failFor[destination]; fail {
		g.logger.Warn("settlement transfer rejected",
			"event", "settlement_transfer_rejected",
			"module", "treasury-core/revenue-split-service",
			"layer", "adapter",
			"destination", destination,
			"amount", amount,
		)
		if err == nil {
			err = errTransferRejected
		}
		return err
	}

	g.transfers = append(g.transfers, Transfer{
		Destination: destination,
		Amount:      amount,
		SentAt:      time.Now().UTC(),
	})
	g.logger.Info("settlement transfer completed",
		"event", "settlement_transfer_completed",
		"module", "treasury-core/revenue-split-service",
		"layer", "adapter",
		"destination", destination,
		"amount", amount,
	)
	return nil
}

// FailDestination makes every subsequent transfer to destination fail.
func (g *Gateway) FailDestination(destination string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failFor[destination] = errTransferRejected
}

// RestoreDestination clears an injected failure.
func (g *Gateway) RestoreDestination(destination string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.failFor, destination)
}

// Transfers returns a copy of the completed transfer log.
func (g *Gateway) Transfers() []Transfer {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Transfer(nil), g.transfers...)
}

var _ ports.AssetTransfer = (*Gateway)(nil)
