package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InitializeRequest struct {
	PayeeIDs     []string `json:"payee_ids"`
	ShareWeights []int64  `json:"share_weights"`
}

type DepositRequest struct {
	From   string `json:"from"`
	Amount int64  `json:"amount"`
}

type AddProjectFeesRequest struct {
	Amount int64 `json:"amount"`
}

type RegistryDTO struct {
	Initialized   bool   `json:"initialized"`
	TotalShares   int64  `json:"total_shares"`
	PayeeCount    int    `json:"payee_count"`
	InitializedAt string `json:"initialized_at,omitempty"`
}

type LedgerDTO struct {
	PoolBalance   int64 `json:"pool_balance"`
	TotalReleased int64 `json:"total_released"`
	TotalReceived int64 `json:"total_received"`
	FeePoolTotal  int64 `json:"fee_pool_total"`
}

type PayeeDTO struct {
	ID            string `json:"id"`
	ShareWeight   int64  `json:"share_weight"`
	ReleasedTotal int64  `json:"released_total"`
	AddedAt       string `json:"added_at,omitempty"`
}

type InvestorDTO struct {
	ID           string `json:"id"`
	FeeOwed      int64  `json:"fee_owed"`
	Status       string `json:"status"`
	RegisteredAt string `json:"registered_at,omitempty"`
	SettledAt    string `json:"settled_at,omitempty"`
}

type ReleaseResponse struct {
	PayeeID string `json:"payee_id"`
	Amount  int64  `json:"amount"`
}

type DepositResponse struct {
	PoolBalance   int64 `json:"pool_balance"`
	TotalReceived int64 `json:"total_received"`
}

type ReimbursementResponse struct {
	InvestorIDs []string `json:"investor_ids"`
	TotalPaid   int64    `json:"total_paid"`
}
