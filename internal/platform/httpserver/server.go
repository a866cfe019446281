package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	revenuesplitservice "splitvault/contexts/treasury-core/revenue-split-service"
	treasuryerrors "splitvault/contexts/treasury-core/revenue-split-service/domain/errors"
	treasuryhttp "splitvault/contexts/treasury-core/revenue-split-service/transport/http"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "splitvault/internal/platform/httpserver/docs"
)

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	treasury      revenuesplitservice.Module
	reimbursement bool
}

func New(
	treasury revenuesplitservice.Module,
	logger *slog.Logger,
	addr string,
	reimbursement bool,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		treasury:      treasury,
		reimbursement: reimbursement,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /v1/treasury/registry", s.handleGetRegistry)
	s.mux.HandleFunc("GET /v1/treasury/ledger", s.handleGetLedger)
	s.mux.HandleFunc("GET /v1/treasury/payees", s.handleListPayees)
	s.mux.HandleFunc("GET /v1/treasury/payees/{payee_id}", s.handleGetPayee)
	s.mux.HandleFunc("GET /v1/treasury/payees/index/{index}", s.handleGetPayeeAt)
	s.mux.HandleFunc("GET /v1/treasury/investors", s.handleListInvestors)
	s.mux.HandleFunc("GET /v1/treasury/investors/{investor_id}", s.handleGetInvestor)

	s.mux.HandleFunc("POST /v1/treasury/registry/initialize", s.handleInitialize)
	s.mux.HandleFunc("POST /v1/treasury/deposits", s.handleDeposit)
	s.mux.HandleFunc("POST /v1/treasury/payees/{payee_id}/release", s.handleRelease)
	if s.reimbursement {
		s.mux.HandleFunc("POST /v1/treasury/investors/{investor_id}/fees", s.handleAddProjectFees)
		s.mux.HandleFunc("POST /v1/treasury/reimbursements", s.handleReimburse)
	}
}

func (s *Server) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	resp, err := s.treasury.Handler.RegistryHandler(r.Context())
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetLedger(w http.ResponseWriter, r *http.Request) {
	resp, err := s.treasury.Handler.LedgerHandler(r.Context())
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPayees(w http.ResponseWriter, r *http.Request) {
	resp, err := s.treasury.Handler.ListPayeesHandler(r.Context())
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPayee(w http.ResponseWriter, r *http.Request) {
	payeeID := r.PathValue("payee_id")
	resp, err := s.treasury.Handler.PayeeHandler(r.Context(), payeeID)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPayeeAt(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_index", "index must be an integer")
		return
	}
	resp, err := s.treasury.Handler.PayeeAtHandler(r.Context(), index)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetInvestor(w http.ResponseWriter, r *http.Request) {
	investorID := r.PathValue("investor_id")
	resp, err := s.treasury.Handler.InvestorHandler(r.Context(), investorID)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListInvestors(w http.ResponseWriter, r *http.Request) {
	resp, err := s.treasury.Handler.ListInvestorsHandler(r.Context())
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req treasuryhttp.InitializeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	if err := s.treasury.Handler.InitializeHandler(r.Context(), callerID, req); err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "initialized"})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req treasuryhttp.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.treasury.Handler.DepositHandler(r.Context(), req)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	payeeID := r.PathValue("payee_id")
	resp, err := s.treasury.Handler.ReleaseHandler(r.Context(), callerID, payeeID)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddProjectFees(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req treasuryhttp.AddProjectFeesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeTreasuryError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	investorID := r.PathValue("investor_id")
	resp, err := s.treasury.Handler.AddProjectFeesHandler(r.Context(), callerID, investorID, req)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReimburse(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	resp, err := s.treasury.Handler.ReimburseHandler(r.Context(), callerID)
	if err != nil {
		writeTreasuryDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireCaller(w http.ResponseWriter, r *http.Request) (string, bool) {
	callerID := strings.TrimSpace(r.Header.Get("X-Caller-Id"))
	if callerID == "" {
		writeTreasuryError(w, http.StatusUnauthorized, "missing_caller", "X-Caller-Id header is required")
		return "", false
	}
	return callerID, true
}

func writeTreasuryDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, treasuryerrors.ErrPayeeNotFound):
		writeTreasuryError(w, http.StatusNotFound, "payee_not_found", err.Error())
	case errors.Is(err, treasuryerrors.ErrInvestorNotFound):
		writeTreasuryError(w, http.StatusNotFound, "investor_not_found", err.Error())
	case errors.Is(err, treasuryerrors.ErrPayeeIndexOutOfRange):
		writeTreasuryError(w, http.StatusBadRequest, "payee_index_out_of_range", err.Error())
	case errors.Is(err, treasuryerrors.ErrInvalidPayeeInput),
		errors.Is(err, treasuryerrors.ErrMismatchedShareInput),
		errors.Is(err, treasuryerrors.ErrPayeeExists),
		errors.Is(err, treasuryerrors.ErrInvalidDepositInput),
		errors.Is(err, treasuryerrors.ErrInvalidInvestorInput):
		writeTreasuryError(w, http.StatusBadRequest, "invalid_treasury_input", err.Error())
	case errors.Is(err, treasuryerrors.ErrRegistryAlreadyInitialized):
		writeTreasuryError(w, http.StatusConflict, "registry_already_initialized", err.Error())
	case errors.Is(err, treasuryerrors.ErrRegistryNotInitialized):
		writeTreasuryError(w, http.StatusConflict, "registry_not_initialized", err.Error())
	case errors.Is(err, treasuryerrors.ErrNotOwner):
		writeTreasuryError(w, http.StatusForbidden, "not_owner", err.Error())
	case errors.Is(err, treasuryerrors.ErrReleaseNotSelf):
		writeTreasuryError(w, http.StatusForbidden, "release_not_self", err.Error())
	case errors.Is(err, treasuryerrors.ErrNoPaymentDue):
		writeTreasuryError(w, http.StatusUnprocessableEntity, "no_payment_due", err.Error())
	case errors.Is(err, treasuryerrors.ErrNoFeesOwed):
		writeTreasuryError(w, http.StatusUnprocessableEntity, "no_fees_owed", err.Error())
	case errors.Is(err, treasuryerrors.ErrInsufficientPoolBalance):
		writeTreasuryError(w, http.StatusUnprocessableEntity, "insufficient_pool_balance", err.Error())
	case errors.Is(err, treasuryerrors.ErrTransferFailed):
		writeTreasuryError(w, http.StatusBadGateway, "transfer_failed", err.Error())
	default:
		writeTreasuryError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeTreasuryError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, treasuryhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
