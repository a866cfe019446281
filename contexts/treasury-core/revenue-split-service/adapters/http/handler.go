package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "splitvault/contexts/treasury-core/revenue-split-service/application"
	"splitvault/contexts/treasury-core/revenue-split-service/application/commands"
	"splitvault/contexts/treasury-core/revenue-split-service/application/queries"
	"splitvault/contexts/treasury-core/revenue-split-service/domain/entities"
	httptransport "splitvault/contexts/treasury-core/revenue-split-service/transport/http"
)

type Handler struct {
	Commands commands.UseCase
	Queries  queries.UseCase
	Logger   *slog.Logger
}

func (h Handler) InitializeHandler(
	ctx context.Context,
	callerID string,
	req httptransport.InitializeRequest,
) error {
	logger := application.ResolveLogger(h.Logger)
	if err := h.Commands.Initialize(ctx, commands.InitializeCommand{
		CallerID:     callerID,
		PayeeIDs:     append([]string(nil), req.PayeeIDs...),
		ShareWeights: append([]int64(nil), req.ShareWeights...),
	}); err != nil {
		logger.Warn("treasury http initialize failed",
			"event", "treasury_http_initialize_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "adapter",
			"caller_id", strings.TrimSpace(callerID),
			"payee_count", len(req.PayeeIDs),
			"error", err.Error(),
		)
		return err
	}
	logger.Info("treasury http initialize completed",
		"event", "treasury_http_initialize_completed",
		"module", "treasury-core/revenue-split-service",
		"layer", "adapter",
		"caller_id", strings.TrimSpace(callerID),
		"payee_count", len(req.PayeeIDs),
	)
	return nil
}

func (h Handler) DepositHandler(
	ctx context.Context,
	req httptransport.DepositRequest,
) (httptransport.DepositResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	ledger, err := h.Commands.Deposit(ctx, commands.DepositCommand{
		FromID: req.From,
		Amount: req.Amount,
	})
	if err != nil {
		logger.Warn("treasury http deposit failed",
			"event", "treasury_http_deposit_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "adapter",
			"from_id", strings.TrimSpace(req.From),
			"amount", req.Amount,
			"error", err.Error(),
		)
		return httptransport.DepositResponse{}, err
	}
	return httptransport.DepositResponse{
		PoolBalance:   ledger.PoolBalance,
		TotalReceived: ledger.TotalReceived(),
	}, nil
}

func (h Handler) ReleaseHandler(
	ctx context.Context,
	callerID string,
	payeeID string,
) (httptransport.ReleaseResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	amount, err := h.Commands.Release(ctx, commands.ReleaseCommand{
		CallerID: callerID,
		PayeeID:  payeeID,
	})
	if err != nil {
		logger.Warn("treasury http release failed",
			"event", "treasury_http_release_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "adapter",
			"caller_id", strings.TrimSpace(callerID),
			"payee_id", strings.TrimSpace(payeeID),
			"error", err.Error(),
		)
		return httptransport.ReleaseResponse{}, err
	}
	logger.Info("treasury http release completed",
		"event", "treasury_http_release_completed",
		"module", "treasury-core/revenue-split-service",
		"layer", "adapter",
		"payee_id", strings.TrimSpace(payeeID),
		"amount", amount,
	)
	return httptransport.ReleaseResponse{
		PayeeID: strings.TrimSpace(payeeID),
		Amount:  amount,
	}, nil
}

func (h Handler) AddProjectFeesHandler(
	ctx context.Context,
	callerID string,
	investorID string,
	req httptransport.AddProjectFeesRequest,
) (httptransport.InvestorDTO, error) {
	logger := application.ResolveLogger(h.Logger)
	record, err := h.Commands.AddProjectFees(ctx, commands.AddProjectFeesCommand{
		CallerID:   callerID,
		InvestorID: investorID,
		Amount:     req.Amount,
	})
	if err != nil {
		logger.Warn("treasury http add project fees failed",
			"event", "treasury_http_add_project_fees_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "adapter",
			"caller_id", strings.TrimSpace(callerID),
			"investor_id", strings.TrimSpace(investorID),
			"amount", req.Amount,
			"error", err.Error(),
		)
		return httptransport.InvestorDTO{}, err
	}
	return mapInvestor(record), nil
}

func (h Handler) ReimburseHandler(
	ctx context.Context,
	callerID string,
) (httptransport.ReimbursementResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	result, err := h.Commands.ReimburseProjectFees(ctx, commands.ReimburseProjectFeesCommand{
		CallerID: callerID,
	})
	if err != nil {
		logger.Warn("treasury http reimburse failed",
			"event", "treasury_http_reimburse_failed",
			"module", "treasury-core/revenue-split-service",
			"layer", "adapter",
			"caller_id", strings.TrimSpace(callerID),
			"paid_before_failure", result.TotalPaid,
			"error", err.Error(),
		)
		return httptransport.ReimbursementResponse{}, err
	}
	return httptransport.ReimbursementResponse{
		InvestorIDs: append([]string(nil), result.InvestorIDs...),
		TotalPaid:   result.TotalPaid,
	}, nil
}

func (h Handler) RegistryHandler(ctx context.Context) (httptransport.RegistryDTO, error) {
	registry, err := h.Queries.Registry(ctx)
	if err != nil {
		return httptransport.RegistryDTO{}, err
	}
	dto := httptransport.RegistryDTO{
		Initialized: registry.Initialized,
		TotalShares: registry.TotalShares,
		PayeeCount:  registry.PayeeCount,
	}
	if registry.InitializedAt != nil {
		dto.InitializedAt = registry.InitializedAt.Format(time.RFC3339)
	}
	return dto, nil
}

func (h Handler) LedgerHandler(ctx context.Context) (httptransport.LedgerDTO, error) {
	ledger, err := h.Queries.Ledger(ctx)
	if err != nil {
		return httptransport.LedgerDTO{}, err
	}
	return httptransport.LedgerDTO{
		PoolBalance:   ledger.PoolBalance,
		TotalReleased: ledger.TotalReleased,
		TotalReceived: ledger.TotalReceived(),
		FeePoolTotal:  ledger.FeePoolTotal,
	}, nil
}

func (h Handler) PayeeHandler(ctx context.Context, payeeID string) (httptransport.PayeeDTO, error) {
	payee, err := h.Queries.Payee(ctx, payeeID)
	if err != nil {
		return httptransport.PayeeDTO{}, err
	}
	return mapPayee(payee), nil
}

func (h Handler) PayeeAtHandler(ctx context.Context, index int) (httptransport.PayeeDTO, error) {
	payee, err := h.Queries.PayeeAt(ctx, index)
	if err != nil {
		return httptransport.PayeeDTO{}, err
	}
	return mapPayee(payee), nil
}

func (h Handler) ListPayeesHandler(ctx context.Context) ([]httptransport.PayeeDTO, error) {
	payees, err := h.Queries.ListPayees(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]httptransport.PayeeDTO, 0, len(payees))
	for _, payee := range payees {
		dtos = append(dtos, mapPayee(payee))
	}
	return dtos, nil
}

func (h Handler) InvestorHandler(ctx context.Context, investorID string) (httptransport.InvestorDTO, error) {
	record, err := h.Queries.Investor(ctx, investorID)
	if err != nil {
		return httptransport.InvestorDTO{}, err
	}
	return mapInvestor(record), nil
}

func (h Handler) ListInvestorsHandler(ctx context.Context) ([]httptransport.InvestorDTO, error) {
	investors, err := h.Queries.ListInvestors(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]httptransport.InvestorDTO, 0, len(investors))
	for _, record := range investors {
		dtos = append(dtos, mapInvestor(record))
	}
	return dtos, nil
}

func mapPayee(payee entities.Payee) httptransport.PayeeDTO {
	dto := httptransport.PayeeDTO{
		ID:            payee.ID,
		ShareWeight:   payee.ShareWeight,
		ReleasedTotal: payee.ReleasedTotal,
	}
	if !payee.AddedAt.IsZero() {
		dto.AddedAt = payee.AddedAt.Format(time.RFC3339)
	}
	return dto
}

func mapInvestor(record entities.InvestorRecord) httptransport.InvestorDTO {
	dto := httptransport.InvestorDTO{
		ID:      record.ID,
		FeeOwed: record.FeeOwed,
		Status:  string(record.Status),
	}
	if !record.RegisteredAt.IsZero() {
		dto.RegisteredAt = record.RegisteredAt.Format(time.RFC3339)
	}
	if record.SettledAt != nil {
		dto.SettledAt = record.SettledAt.Format(time.RFC3339)
	}
	return dto
}
