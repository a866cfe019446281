package queries

import (
	"context"
	"log/slog"
	"strings"

	application "splitvault/contexts/treasury-core/revenue-split-service/application"
	"splitvault/contexts/treasury-core/revenue-split-service/domain/entities"
	"splitvault/contexts/treasury-core/revenue-split-service/ports"
)

type UseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (uc UseCase) Registry(ctx context.Context) (entities.Registry, error) {
	registry, err := uc.Repository.GetRegistry(ctx)
	if err != nil {
		return entities.Registry{}, uc.logQueryError("treasury_query_registry_failed", err)
	}
	return registry, nil
}

func (uc UseCase) Ledger(ctx context.Context) (entities.LedgerTotals, error) {
	ledger, err := uc.Repository.GetLedger(ctx)
	if err != nil {
		return entities.LedgerTotals{}, uc.logQueryError("treasury_query_ledger_failed", err)
	}
	return ledger, nil
}

func (uc UseCase) Payee(ctx context.Context, payeeID string) (entities.Payee, error) {
	payee, err := uc.Repository.GetPayee(ctx, strings.TrimSpace(payeeID))
	if err != nil {
		return entities.Payee{}, uc.logQueryError("treasury_query_payee_failed", err)
	}
	return payee, nil
}

func (uc UseCase) PayeeAt(ctx context.Context, index int) (entities.Payee, error) {
	payee, err := uc.Repository.PayeeAt(ctx, index)
	if err != nil {
		return entities.Payee{}, uc.logQueryError("treasury_query_payee_at_failed", err)
	}
	return payee, nil
}

func (uc UseCase) ListPayees(ctx context.Context) ([]entities.Payee, error) {
	payees, err := uc.Repository.ListPayees(ctx)
	if err != nil {
		return nil, uc.logQueryError("treasury_query_list_payees_failed", err)
	}
	return payees, nil
}

func (uc UseCase) Investor(ctx context.Context, investorID string) (entities.InvestorRecord, error) {
	record, err := uc.Repository.GetInvestor(ctx, strings.TrimSpace(investorID))
	if err != nil {
		return entities.InvestorRecord{}, uc.logQueryError("treasury_query_investor_failed", err)
	}
	return record, nil
}

func (uc UseCase) ListInvestors(ctx context.Context) ([]entities.InvestorRecord, error) {
	investors, err := uc.Repository.ListInvestors(ctx)
	if err != nil {
		return nil, uc.logQueryError("treasury_query_list_investors_failed", err)
	}
	return investors, nil
}

func (uc UseCase) logQueryError(event string, err error) error {
	application.ResolveLogger(uc.Logger).Warn("treasury query failed",
		"event", event,
		"module", "treasury-core/revenue-split-service",
		"layer", "application",
		"error", err.Error(),
	)
	return err
}
