package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"splitvault/contexts/treasury-core/revenue-split-service/domain/entities"
	domainerrors "splitvault/contexts/treasury-core/revenue-split-service/domain/errors"
	"splitvault/contexts/treasury-core/revenue-split-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ledgerRowID = 1

	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) InitializeRegistry(ctx context.Context, payees []entities.Payee) error {
	if len(payees) == 0 {
		return domainerrors.ErrMismatchedShareInput
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledger treasuryLedgerModel
		if err := lockLedger(tx, &ledger); err != nil {
			return r.logError("treasury_repo_initialize_ledger_lock_failed", err)
		}
		if ledger.RegistryInitialized {
			return domainerrors.ErrRegistryAlreadyInitialized
		}

		var totalShares int64
		for position, payee := range payees {
			id := strings.TrimSpace(payee.ID)
			if id == "" || payee.ShareWeight <= 0 {
				return domainerrors.ErrInvalidPayeeInput
			}
			row := treasuryPayeeModel{
				ID:            id,
				Position:      position,
				ShareWeight:   payee.ShareWeight,
				ReleasedTotal: 0,
				AddedAt:       payee.AddedAt.UTC(),
			}
			if row.AddedAt.IsZero() {
				row.AddedAt = time.Now().UTC()
			}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return domainerrors.ErrPayeeExists
				}
				return r.logError("treasury_repo_initialize_payee_insert_failed", err,
					"payee_id", id,
				)
			}
			totalShares += payee.ShareWeight
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"registry_initialized":    true,
			"registry_initialized_at": now,
			"total_shares":            totalShares,
			"updated_at":              now,
		}
		if err := tx.Model(&treasuryLedgerModel{}).Where("id = ?", ledgerRowID).Updates(updates).Error; err != nil {
			return r.logError("treasury_repo_initialize_registry_update_failed", err)
		}
		return nil
	})
}

func (r *Repository) GetRegistry(ctx context.Context) (entities.Registry, error) {
	ledger, err := r.loadLedger(ctx)
	if err != nil {
		return entities.Registry{}, err
	}
	var payeeCount int64
	if err := r.db.WithContext(ctx).Model(&treasuryPayeeModel{}).Count(&payeeCount).Error; err != nil {
		return entities.Registry{}, r.logError("treasury_repo_registry_count_failed", err)
	}
	return entities.Registry{
		Initialized:   ledger.RegistryInitialized,
		TotalShares:   ledger.TotalShares,
		PayeeCount:    int(payeeCount),
		InitializedAt: normalizeOptionalTime(ledger.RegistryInitializedAt),
	}, nil
}

func (r *Repository) GetPayee(ctx context.Context, payeeID string) (entities.Payee, error) {
	var row treasuryPayeeModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(payeeID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Payee{}, domainerrors.ErrPayeeNotFound
		}
		return entities.Payee{}, r.logError("treasury_repo_get_payee_failed", err,
			"payee_id", strings.TrimSpace(payeeID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) PayeeAt(ctx context.Context, index int) (entities.Payee, error) {
	if index < 0 {
		return entities.Payee{}, domainerrors.ErrPayeeIndexOutOfRange
	}
	var row treasuryPayeeModel
	err := r.db.WithContext(ctx).
		Where("position = ?", index).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Payee{}, domainerrors.ErrPayeeIndexOutOfRange
		}
		return entities.Payee{}, r.logError("treasury_repo_payee_at_failed", err,
			"index", index,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListPayees(ctx context.Context) ([]entities.Payee, error) {
	var rows []treasuryPayeeModel
	if err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("treasury_repo_list_payees_failed", err)
	}
	payees := make([]entities.Payee, 0, len(rows))
	for _, row := range rows {
		payees = append(payees, row.toEntity())
	}
	return payees, nil
}

func (r *Repository) GetLedger(ctx context.Context) (entities.LedgerTotals, error) {
	ledger, err := r.loadLedger(ctx)
	if err != nil {
		return entities.LedgerTotals{}, err
	}
	return ledger.toTotals(), nil
}

func (r *Repository) RecordDeposit(ctx context.Context, amount int64) (entities.LedgerTotals, error) {
	if amount <= 0 {
		return entities.LedgerTotals{}, domainerrors.ErrInvalidDepositInput
	}
	var totals entities.LedgerTotals
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledger treasuryLedgerModel
		if err := lockLedger(tx, &ledger); err != nil {
			return r.logError("treasury_repo_deposit_ledger_lock_failed", err)
		}
		ledger.PoolBalance += amount
		ledger.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&ledger).Error; err != nil {
			return r.logError("treasury_repo_deposit_save_failed", err, "amount", amount)
		}
		totals = ledger.toTotals()
		return nil
	})
	if err != nil {
		return entities.LedgerTotals{}, err
	}
	return totals, nil
}

func (r *Repository) ApplyRelease(ctx context.Context, payeeID string, amount int64) error {
	id := strings.TrimSpace(payeeID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledger treasuryLedgerModel
		if err := lockLedger(tx, &ledger); err != nil {
			return r.logError("treasury_repo_release_ledger_lock_failed", err, "payee_id", id)
		}
		if amount <= 0 {
			return domainerrors.ErrNoPaymentDue
		}
		if amount > ledger.PoolBalance {
			return domainerrors.ErrInsufficientPoolBalance
		}

		result := tx.Model(&treasuryPayeeModel{}).
			Where("id = ?", id).
			Update("released_total", gorm.Expr("released_total + ?", amount))
		if result.Error != nil {
			return r.logError("treasury_repo_release_payee_update_failed", result.Error, "payee_id", id)
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrPayeeNotFound
		}

		ledger.PoolBalance -= amount
		ledger.TotalReleased += amount
		ledger.UpdatedAt = time.Now().UTC()
		if err := tx.Save(&ledger).Error; err != nil {
			return r.logError("treasury_repo_release_ledger_save_failed", err, "payee_id", id)
		}
		return nil
	})
}

func (r *Repository) AddInvestorFee(ctx context.Context, investorID string, amount int64) (entities.InvestorRecord, error) {
	id := strings.TrimSpace(investorID)
	if id == "" || amount <= 0 {
		return entities.InvestorRecord{}, domainerrors.ErrInvalidInvestorInput
	}

	var record entities.InvestorRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledger treasuryLedgerModel
		if err := lockLedger(tx, &ledger); err != nil {
			return r.logError("treasury_repo_add_fee_ledger_lock_failed", err, "investor_id", id)
		}

		now := time.Now().UTC()
		var row treasuryInvestorModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&row).
			Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			var position int64
			if err := tx.Model(&treasuryInvestorModel{}).Count(&position).Error; err != nil {
				return r.logError("treasury_repo_add_fee_position_failed", err, "investor_id", id)
			}
			row = treasuryInvestorModel{
				ID:           id,
				Position:     int(position),
				FeeOwed:      amount,
				Status:       string(entities.InvestorStatusActive),
				RegisteredAt: now,
				UpdatedAt:    now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return r.logError("treasury_repo_add_fee_insert_failed", err, "investor_id", id)
			}
		case err != nil:
			return r.logError("treasury_repo_add_fee_lookup_failed", err, "investor_id", id)
		default:
			row.FeeOwed += amount
			row.Status = string(entities.InvestorStatusActive)
			row.UpdatedAt = now
			row.SettledAt = nil
			if err := tx.Save(&row).Error; err != nil {
				return r.logError("treasury_repo_add_fee_update_failed", err, "investor_id", id)
			}
		}

		ledger.FeePoolTotal += amount
		ledger.UpdatedAt = now
		if err := tx.Save(&ledger).Error; err != nil {
			return r.logError("treasury_repo_add_fee_ledger_save_failed", err, "investor_id", id)
		}
		record = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.InvestorRecord{}, err
	}
	return record, nil
}

func (r *Repository) GetInvestor(ctx context.Context, investorID string) (entities.InvestorRecord, error) {
	var row treasuryInvestorModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(investorID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.InvestorRecord{}, domainerrors.ErrInvestorNotFound
		}
		return entities.InvestorRecord{}, r.logError("treasury_repo_get_investor_failed", err,
			"investor_id", strings.TrimSpace(investorID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListInvestors(ctx context.Context) ([]entities.InvestorRecord, error) {
	var rows []treasuryInvestorModel
	if err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("treasury_repo_list_investors_failed", err)
	}
	records := make([]entities.InvestorRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toEntity())
	}
	return records, nil
}

func (r *Repository) SettleInvestorFee(ctx context.Context, investorID string) (entities.InvestorRecord, error) {
	id := strings.TrimSpace(investorID)
	var record entities.InvestorRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ledger treasuryLedgerModel
		if err := lockLedger(tx, &ledger); err != nil {
			return r.logError("treasury_repo_settle_ledger_lock_failed", err, "investor_id", id)
		}

		var row treasuryInvestorModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&row).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrInvestorNotFound
			}
			return r.logError("treasury_repo_settle_lookup_failed", err, "investor_id", id)
		}
		if row.Status != string(entities.InvestorStatusActive) || row.FeeOwed <= 0 {
			record = row.toEntity()
			return nil
		}
		if row.FeeOwed > ledger.PoolBalance {
			return domainerrors.ErrInsufficientPoolBalance
		}

		now := time.Now().UTC()
		ledger.PoolBalance -= row.FeeOwed
		ledger.FeePoolTotal -= row.FeeOwed
		ledger.UpdatedAt = now
		if err := tx.Save(&ledger).Error; err != nil {
			return r.logError("treasury_repo_settle_ledger_save_failed", err, "investor_id", id)
		}

		row.FeeOwed = 0
		row.Status = string(entities.InvestorStatusCleared)
		row.UpdatedAt = now
		row.SettledAt = &now
		if err := tx.Save(&row).Error; err != nil {
			return r.logError("treasury_repo_settle_update_failed", err, "investor_id", id)
		}
		record = row.toEntity()
		return nil
	})
	if err != nil {
		return entities.InvestorRecord{}, err
	}
	return record, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return r.logError("treasury_repo_outbox_encode_failed", err,
			"event_type", envelope.EventType,
		)
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	row := treasuryOutboxModel{
		OutboxID:     outboxID,
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row).Error; err != nil {
		return r.logError("treasury_repo_outbox_append_failed", err,
			"outbox_id", outboxID,
			"event_type", row.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []treasuryOutboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("treasury_repo_outbox_list_failed", err)
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

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&treasuryOutboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("treasury_repo_outbox_mark_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrOutboxNotFound
	}
	return nil
}

func (r *Repository) loadLedger(ctx context.Context) (treasuryLedgerModel, error) {
	var ledger treasuryLedgerModel
	err := r.db.WithContext(ctx).
		Where("id = ?", ledgerRowID).
		First(&ledger).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return treasuryLedgerModel{ID: ledgerRowID}, nil
		}
		return treasuryLedgerModel{}, r.logError("treasury_repo_ledger_load_failed", err)
	}
	return ledger, nil
}

// lockLedger loads the singleton ledger row under FOR UPDATE, creating it on
// first use so every mutation serializes on the same row.
func lockLedger(tx *gorm.DB, ledger *treasuryLedgerModel) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", ledgerRowID).
		First(ledger).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		*ledger = treasuryLedgerModel{ID: ledgerRowID, UpdatedAt: time.Now().UTC()}
		if err := tx.Create(ledger).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", ledgerRowID).
			First(ledger).
			Error
	}
	return err
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "treasury-core/revenue-split-service",
		"layer", "adapter",
	)
	fields = append(fields, attrs...)
	fields = append(fields, "error", err.Error())
	r.logger.Error("treasury repository failure", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
