package domain

import (
	"context"
	"database/sql"
	"sync"

	"github.com/drawlab/backend/internal/entity"
	"github.com/drawlab/backend/internal/model"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

type CreditDomain interface {
	GetBalance(context.Context, *model.GetBalanceRequest) (*model.GetBalanceResponse, error)
	Buy(context.Context, *model.BuyCreditsRequest) (*model.BuyCreditsResponse, error)
	GetLedger(context.Context, *model.GetLedgerRequest) (*model.GetLedgerResponse, error)

	// DebitForDraw appends the debit entry of one executed draw. Debits of
	// the same owner are serialized, so the balance check and the entry
	// insert cannot interleave with another debit.
	DebitForDraw(ctx context.Context, ownerID, drawID string, amount int64) error

	// RefundDraw offsets a previous debit of a failed draw with a new
	// entry. The original entry is never touched.
	RefundDraw(ctx context.Context, ownerID, drawID string, amount int64) error
}

type creditDomain struct {
	creditRepo repository.CreditRepository

	debitMutexes *xsync.MapOf[string, *sync.Mutex]
}

func NewCreditDomain(creditRepo repository.CreditRepository) *creditDomain {
	return &creditDomain{
		creditRepo:   creditRepo,
		debitMutexes: xsync.NewMapOf[*sync.Mutex](),
	}
}

func (d *creditDomain) GetBalance(
	ctx context.Context, req *model.GetBalanceRequest,
) (*model.GetBalanceResponse, error) {
	balance, err := d.creditRepo.GetBalance(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetBalanceResponse{Balance: balance}, nil
}

func (d *creditDomain) Buy(
	ctx context.Context, req *model.BuyCreditsRequest,
) (*model.BuyCreditsResponse, error) {
	if req.Amount <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Amount must be a positive number")
	}

	ownerID := xcontext.RequestUserID(ctx)
	entry := &entity.CreditLedgerEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		OwnerID:       ownerID,
		Amount:        req.Amount,
		Kind:          entity.CreditPurchase,
	}

	if err := d.creditRepo.CreateEntry(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create purchase entry: %v", err)
		return nil, errorx.Unknown
	}

	balance, err := d.creditRepo.GetBalance(ctx, ownerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
		return nil, errorx.Unknown
	}

	return &model.BuyCreditsResponse{Balance: balance}, nil
}

func (d *creditDomain) GetLedger(
	ctx context.Context, req *model.GetLedgerRequest,
) (*model.GetLedgerResponse, error) {
	entries, err := d.creditRepo.GetEntriesByOwnerID(ctx, xcontext.RequestUserID(ctx), 0, 50)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get ledger entries: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetLedgerResponse{Entries: []model.LedgerEntry{}}
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, model.LedgerEntry{
			ID:        entry.ID,
			Amount:    entry.Amount,
			Kind:      string(entry.Kind),
			DrawID:    entry.DrawID.String,
			CreatedAt: entry.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return resp, nil
}

func (d *creditDomain) DebitForDraw(ctx context.Context, ownerID, drawID string, amount int64) error {
	if amount <= 0 {
		return errorx.New(errorx.BadRequest, "Debit amount must be a positive number")
	}

	// The mutex is held until the transaction committed, so a concurrent
	// debit of the same owner always sees this one in the balance.
	mutex, _ := d.debitMutexes.LoadOrStore(ownerID, &sync.Mutex{})
	mutex.Lock()
	defer mutex.Unlock()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	balance, err := d.creditRepo.GetBalance(ctx, ownerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get balance: %v", err)
		return errorx.Unknown
	}

	if balance < amount {
		return errorx.New(errorx.InsufficientCredits,
			"Not enough credits, have %d, need %d", balance, amount)
	}

	entry := &entity.CreditLedgerEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		OwnerID:       ownerID,
		Amount:        -amount,
		Kind:          entity.CreditDrawUsage,
		DrawID:        sql.NullString{Valid: true, String: drawID},
	}

	if err := d.creditRepo.CreateEntry(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create debit entry: %v", err)
		return errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)
	return nil
}

func (d *creditDomain) RefundDraw(ctx context.Context, ownerID, drawID string, amount int64) error {
	if amount <= 0 {
		return errorx.New(errorx.BadRequest, "Refund amount must be a positive number")
	}

	entry := &entity.CreditLedgerEntry{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		OwnerID:       ownerID,
		Amount:        amount,
		Kind:          entity.CreditRefund,
		DrawID:        sql.NullString{Valid: true, String: drawID},
	}

	if err := d.creditRepo.CreateEntry(ctx, entry); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create refund entry: %v", err)
		return errorx.Unknown
	}

	return nil
}
