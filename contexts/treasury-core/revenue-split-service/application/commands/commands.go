package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"time"

	application "splitvault/contexts/treasury-core/revenue-split-service/application"
	"splitvault/contexts/treasury-core/revenue-split-service/domain/entities"
	domainerrors "splitvault/contexts/treasury-core/revenue-split-service/domain/errors"
	"splitvault/contexts/treasury-core/revenue-split-service/ports"
)

const (
	EventTypePayeeAdded            = "treasury.payee_added"
	EventTypePaymentReceived       = "treasury.payment_received"
	EventTypePaymentReleased       = "treasury.payment_released"
	EventTypeInvestorFeeRegistered = "treasury.investor_fee_registered"
	EventTypeInvestorReimbursed    = "treasury.investor_reimbursed"
)

type InitializeCommand struct {
	CallerID     string
	PayeeIDs     []string
	ShareWeights []int64
}

type DepositCommand struct {
	FromID string
	Amount int64
}

type ReleaseCommand struct {
	CallerID string
	PayeeID  string
}

type AddProjectFeesCommand struct {
	CallerID   string
	InvestorID string
	Amount     int64
}

type ReimburseProjectFeesCommand struct {
	CallerID string
}

type ReimbursementResult struct {
	InvestorIDs []string
	TotalPaid   int64
}

type UseCase struct {
	Repository ports.Repository
	Gate       ports.AuthorizationGate
	Transfer   ports.AssetTransfer
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Outbox     ports.OutboxWriter
	Logger     *slog.Logger
}

// Initialize registers the fixed payee set exactly once. Every later call
// fails regardless of arguments.
func (uc UseCase) Initialize(ctx context.Context, cmd InitializeCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.authorize(ctx, cmd.CallerID, "initialize"); err != nil {
		return err
	}

	registry, err := uc.Repository.GetRegistry(ctx)
	if err != nil {
		return uc.logError(logger, "treasury_initialize_registry_lookup_failed", err)
	}
	if registry.Initialized {
		logger.Warn("treasury initialize rejected",
			"event", "treasury_initialize_already_initialized",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"caller_id", strings.TrimSpace(cmd.CallerID),
		)
		return domainerrors.ErrRegistryAlreadyInitialized
	}

	if len(cmd.PayeeIDs) == 0 || len(cmd.PayeeIDs) != len(cmd.ShareWeights) {
		logger.Warn("treasury initialize invalid input",
			"event", "treasury_initialize_invalid_input",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"payee_count", len(cmd.PayeeIDs),
			"weight_count", len(cmd.ShareWeights),
		)
		return domainerrors.ErrMismatchedShareInput
	}

	now := uc.now()
	seen := make(map[string]struct{}, len(cmd.PayeeIDs))
	payees := make([]entities.Payee, 0, len(cmd.PayeeIDs))
	for i, rawID := range cmd.PayeeIDs {
		payeeID := strings.TrimSpace(rawID)
		weight := cmd.ShareWeights[i]
		if payeeID == "" || weight <= 0 {
			logger.Warn("treasury initialize invalid payee",
				"event", "treasury_initialize_invalid_payee",
				"module", "treasury-core/revenue-split-service",
				"layer", "application",
				"payee_id", payeeID,
				"share_weight", weight,
			)
			return domainerrors.ErrInvalidPayeeInput
		}
		if _, dup := seen[payeeID]; dup {
			logger.Warn("treasury initialize duplicate payee",
				"event", "treasury_initialize_duplicate_payee",
				"module", "treasury-core/revenue-split-service",
				"layer", "application",
				"payee_id", payeeID,
			)
			return domainerrors.ErrPayeeExists
		}
		seen[payeeID] = struct{}{}
		payees = append(payees, entities.Payee{
			ID:          payeeID,
			ShareWeight: weight,
			AddedAt:     now,
		})
	}

	if err := uc.Repository.InitializeRegistry(ctx, payees); err != nil {
		if errors.Is(err, domainerrors.ErrRegistryAlreadyInitialized) {
			return err
		}
		return uc.logError(logger, "treasury_initialize_persist_failed", err)
	}

	for _, payee := range payees {
		uc.appendOutbox(ctx, logger, EventTypePayeeAdded, payee.ID, map[string]any{
			"payee_id":     payee.ID,
			"share_weight": payee.ShareWeight,
		})
	}

	logger.Info("treasury registry initialized",
		"event", "treasury_registry_initialized",
		"module", "treasury-core/revenue-split-service",
		"layer", "application",
		"caller_id", strings.TrimSpace(cmd.CallerID),
		"payee_count", len(payees),
	)
	return nil
}

// Deposit increases the pooled balance. It is open to any external party and
// performs no processing beyond the balance increase and the received log.
func (uc UseCase) Deposit(ctx context.Context, cmd DepositCommand) (entities.LedgerTotals, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.Amount <= 0 {
		logger.Warn("treasury deposit invalid amount",
			"event", "treasury_deposit_invalid_amount",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"from_id", strings.TrimSpace(cmd.FromID),
			"amount", cmd.Amount,
		)
		return entities.LedgerTotals{}, domainerrors.ErrInvalidDepositInput
	}

	ledger, err := uc.Repository.RecordDeposit(ctx, cmd.Amount)
	if err != nil {
		return entities.LedgerTotals{}, uc.logError(logger, "treasury_deposit_persist_failed", err)
	}

	fromID := strings.TrimSpace(cmd.FromID)
	if fromID == "" {
		fromID = "external"
	}
	uc.appendOutbox(ctx, logger, EventTypePaymentReceived, fromID, map[string]any{
		"from_id": fromID,
		"amount":  cmd.Amount,
	})

	logger.Info("treasury payment received",
		"event", "treasury_payment_received",
		"module", "treasury-core/revenue-split-service",
		"layer", "application",
		"from_id", fromID,
		"amount", cmd.Amount,
		"pool_balance", ledger.PoolBalance,
	)
	return ledger, nil
}

// Release pays out the caller's accrued proportional entitlement. Only the
// payee itself may trigger its own payout.
func (uc UseCase) Release(ctx context.Context, cmd ReleaseCommand) (int64, error) {
	logger := application.ResolveLogger(uc.Logger)
	payeeID := strings.TrimSpace(cmd.PayeeID)
	callerID := strings.TrimSpace(cmd.CallerID)
	if callerID == "" || callerID != payeeID {
		logger.Warn("treasury release caller mismatch",
			"event", "treasury_release_caller_mismatch",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"caller_id", callerID,
			"payee_id", payeeID,
		)
		return 0, domainerrors.ErrReleaseNotSelf
	}

	registry, err := uc.Repository.GetRegistry(ctx)
	if err != nil {
		return 0, uc.logError(logger, "treasury_release_registry_lookup_failed", err)
	}
	if !registry.Initialized || registry.TotalShares <= 0 {
		return 0, domainerrors.ErrRegistryNotInitialized
	}

	payee, err := uc.Repository.GetPayee(ctx, payeeID)
	if err != nil {
		logger.Warn("treasury release payee lookup failed",
			"event", "treasury_release_payee_lookup_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"payee_id", payeeID,
			"error", err.Error(),
		)
		return 0, err
	}

	ledger, err := uc.Repository.GetLedger(ctx)
	if err != nil {
		return 0, uc.logError(logger, "treasury_release_ledger_lookup_failed", err)
	}

	entitlement := proRataEntitlement(ledger.TotalReceived(), payee.ShareWeight, registry.TotalShares)
	payment := entitlement - payee.ReleasedTotal
	if payment <= 0 {
		logger.Info("treasury release nothing due",
			"event", "treasury_release_no_payment_due",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"payee_id", payeeID,
			"entitlement", entitlement,
			"released_total", payee.ReleasedTotal,
		)
		return 0, domainerrors.ErrNoPaymentDue
	}
	// Investor reimbursement drains the pool without growing TotalReleased,
	// so an accrued entitlement can exceed what is currently holdable. The
	// shortfall must fail before the rail moves anything.
	if payment > ledger.PoolBalance {
		logger.Warn("treasury release pool shortfall",
			"event", "treasury_release_pool_shortfall",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"payee_id", payeeID,
			"payment", payment,
			"pool_balance", ledger.PoolBalance,
		)
		return 0, domainerrors.ErrInsufficientPoolBalance
	}

	if err := uc.Transfer.Transfer(ctx, payeeID, payment); err != nil {
		logger.Error("treasury release transfer failed",
			"event", "treasury_release_transfer_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"payee_id", payeeID,
			"amount", payment,
			"error", err.Error(),
		)
		return 0, domainerrors.ErrTransferFailed
	}
	if err := uc.Repository.ApplyRelease(ctx, payeeID, payment); err != nil {
		return 0, uc.logError(logger, "treasury_release_persist_failed", err)
	}

	uc.appendOutbox(ctx, logger, EventTypePaymentReleased, payeeID, map[string]any{
		"payee_id": payeeID,
		"amount":   payment,
	})

	logger.Info("treasury payment released",
		"event", "treasury_payment_released",
		"module", "treasury-core/revenue-split-service",
		"layer", "application",
		"payee_id", payeeID,
		"amount", payment,
	)
	return payment, nil
}

// AddProjectFees registers fees owed to a prior contributor. Registration is
// strictly additive so the aggregate fee pool always equals the sum of owed
// amounts, even when the same investor is registered more than once.
func (uc UseCase) AddProjectFees(ctx context.Context, cmd AddProjectFeesCommand) (entities.InvestorRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.authorize(ctx, cmd.CallerID, "add_project_fees"); err != nil {
		return entities.InvestorRecord{}, err
	}

	investorID := strings.TrimSpace(cmd.InvestorID)
	if investorID == "" || cmd.Amount <= 0 {
		logger.Warn("treasury add project fees invalid input",
			"event", "treasury_add_project_fees_invalid_input",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"investor_id", investorID,
			"amount", cmd.Amount,
		)
		return entities.InvestorRecord{}, domainerrors.ErrInvalidInvestorInput
	}

	record, err := uc.Repository.AddInvestorFee(ctx, investorID, cmd.Amount)
	if err != nil {
		return entities.InvestorRecord{}, uc.logError(logger, "treasury_add_project_fees_persist_failed", err)
	}

	uc.appendOutbox(ctx, logger, EventTypeInvestorFeeRegistered, investorID, map[string]any{
		"investor_id": investorID,
		"amount":      cmd.Amount,
		"fee_owed":    record.FeeOwed,
	})

	logger.Info("treasury investor fee registered",
		"event", "treasury_investor_fee_registered",
		"module", "treasury-core/revenue-split-service",
		"layer", "application",
		"caller_id", strings.TrimSpace(cmd.CallerID),
		"investor_id", investorID,
		"amount", cmd.Amount,
		"fee_owed", record.FeeOwed,
	)
	return record, nil
}

// ReimburseProjectFees pays every investor with an outstanding fee, in
// registration order. Records already cleared are skipped, so the operation
// is safely re-callable. A transfer failure aborts the remainder of the
// batch; settlements committed earlier in the same batch are kept.
func (uc UseCase) ReimburseProjectFees(ctx context.Context, cmd ReimburseProjectFeesCommand) (ReimbursementResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if err := uc.authorize(ctx, cmd.CallerID, "reimburse_project_fees"); err != nil {
		return ReimbursementResult{}, err
	}

	ledger, err := uc.Repository.GetLedger(ctx)
	if err != nil {
		return ReimbursementResult{}, uc.logError(logger, "treasury_reimburse_ledger_lookup_failed", err)
	}
	if ledger.FeePoolTotal <= 0 {
		return ReimbursementResult{}, domainerrors.ErrNoFeesOwed
	}
	if ledger.PoolBalance <= 0 || ledger.PoolBalance < ledger.FeePoolTotal {
		logger.Warn("treasury reimburse insufficient pool",
			"event", "treasury_reimburse_insufficient_pool",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"pool_balance", ledger.PoolBalance,
			"fee_pool_total", ledger.FeePoolTotal,
		)
		return ReimbursementResult{}, domainerrors.ErrInsufficientPoolBalance
	}

	investors, err := uc.Repository.ListInvestors(ctx)
	if err != nil {
		return ReimbursementResult{}, uc.logError(logger, "treasury_reimburse_list_failed", err)
	}

	result := ReimbursementResult{}
	for _, investor := range investors {
		if investor.Status != entities.InvestorStatusActive || investor.FeeOwed <= 0 {
			continue
		}
		if err := uc.Transfer.Transfer(ctx, investor.ID, investor.FeeOwed); err != nil {
			logger.Error("treasury reimburse transfer failed",
				"event", "treasury_reimburse_transfer_failed",
				"module", "treasury-core/revenue-split-service",
				"layer", "application",
				"investor_id", investor.ID,
				"amount", investor.FeeOwed,
				"paid_before_failure", result.TotalPaid,
				"error", err.Error(),
			)
			return result, domainerrors.ErrTransferFailed
		}
		settled, err := uc.Repository.SettleInvestorFee(ctx, investor.ID)
		if err != nil {
			return result, uc.logError(logger, "treasury_reimburse_settle_failed", err)
		}

		result.InvestorIDs = append(result.InvestorIDs, settled.ID)
		result.TotalPaid += investor.FeeOwed

		uc.appendOutbox(ctx, logger, EventTypeInvestorReimbursed, investor.ID, map[string]any{
			"investor_id": investor.ID,
			"amount":      investor.FeeOwed,
		})
	}

	logger.Info("treasury investor fees reimbursed",
		"event", "treasury_investor_fees_reimbursed",
		"module", "treasury-core/revenue-split-service",
		"layer", "application",
		"caller_id", strings.TrimSpace(cmd.CallerID),
		"investor_count", len(result.InvestorIDs),
		"total_paid", result.TotalPaid,
	)
	return result, nil
}

func (uc UseCase) authorize(ctx context.Context, callerID string, operation string) error {
	logger := application.ResolveLogger(uc.Logger)
	ok, err := uc.Gate.IsAuthorized(ctx, strings.TrimSpace(callerID))
	if err != nil {
		logger.Error("treasury authorization check failed",
			"event", "treasury_authorization_check_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"operation", operation,
			"error", err.Error(),
		)
		return err
	}
	if !ok {
		logger.Warn("treasury caller not authorized",
			"event", "treasury_caller_not_authorized",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"operation", operation,
			"caller_id", strings.TrimSpace(callerID),
		)
		return domainerrors.ErrNotOwner
	}
	return nil
}

func (uc UseCase) appendOutbox(ctx context.Context, logger *slog.Logger, eventType string, partitionKey string, payload map[string]any) {
	if uc.Outbox == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Error("treasury outbox id generation failed",
			"event", "treasury_outbox_id_generation_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("treasury outbox payload encode failed",
			"event", "treasury_outbox_encode_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	if err := uc.Outbox.AppendOutbox(ctx, ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       uc.now(),
		SourceService:    "revenue-split-service",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "partition_key",
		PartitionKey:     partitionKey,
		Data:             data,
	}); err != nil {
		logger.Error("treasury outbox append failed",
			"event", "treasury_outbox_append_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func (uc UseCase) logError(logger *slog.Logger, event string, err error) error {
	logger.Error("treasury command failed",
		"event", event,
		"module", "treasury-core/revenue-split-service",
		"layer", "application",
		"error", err.Error(),
	)
	return err
}

func (uc UseCase) now() time.Time {
	if uc.Clock == nil {
		return time.Now().UTC()
	}
	return uc.Clock.Now().UTC()
}

// proRataEntitlement computes floor(totalReceived * shares / totalShares)
// without intermediate overflow. The floor remainder stays in the pool and
// becomes claimable once further receipts push the entitlement past the next
// integer boundary.
func proRataEntitlement(totalReceived, shares, totalShares int64) int64 {
	if totalShares <= 0 {
		return 0
	}
	product := new(big.Int).Mul(big.NewInt(totalReceived), big.NewInt(shares))
	product.Quo(product, big.NewInt(totalShares))
	return product.Int64()
}
