package model

type GetBalanceRequest struct{}

type GetBalanceResponse struct {
	Balance int64 `json:"balance"`
}

type BuyCreditsRequest struct {
	Amount int64 `json:"amount"`
}

type BuyCreditsResponse struct {
	Balance int64 `json:"balance"`
}

type GetLedgerRequest struct{}

type LedgerEntry struct {
	ID        int64  `json:"id"`
	Amount    int64  `json:"amount"`
	Kind      string `json:"kind"`
	DrawID    string `json:"draw_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

type GetLedgerResponse struct {
	Entries []LedgerEntry `json:"entries"`
}
