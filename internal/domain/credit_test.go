package domain_test

import (
	"testing"

	"github.com/drawlab/backend/internal/domain"
	"github.com/drawlab/backend/internal/model"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_CreditDomain_BuyAndBalance(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	creditDomain := domain.NewCreditDomain(repository.NewCreditRepository())

	balance, err := creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(0), balance.Balance)

	resp, err := creditDomain.Buy(ctx, &model.BuyCreditsRequest{Amount: 10})
	require.NoError(t, err)
	require.Equal(t, int64(10), resp.Balance)

	resp, err = creditDomain.Buy(ctx, &model.BuyCreditsRequest{Amount: 5})
	require.NoError(t, err)
	require.Equal(t, int64(15), resp.Balance)
}

func Test_CreditDomain_BuyInvalidAmount(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	creditDomain := domain.NewCreditDomain(repository.NewCreditRepository())

	_, err := creditDomain.Buy(ctx, &model.BuyCreditsRequest{Amount: 0})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = creditDomain.Buy(ctx, &model.BuyCreditsRequest{Amount: -3})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})
}

func Test_CreditDomain_DebitForDraw(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	creditDomain := domain.NewCreditDomain(repository.NewCreditRepository())

	testutil.GrantCredits(ctx, "owner1", 2)

	require.NoError(t, creditDomain.DebitForDraw(ctx, "owner1", "draw1", 1))

	balance, err := creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(1), balance.Balance)
}

func Test_CreditDomain_InsufficientCredits(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	creditDomain := domain.NewCreditDomain(repository.NewCreditRepository())

	testutil.GrantCredits(ctx, "owner1", 2)

	err := creditDomain.DebitForDraw(ctx, "owner1", "draw1", 3)
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientCredits})

	// The failed debit left no entry behind.
	balance, err := creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), balance.Balance)

	ledger, err := creditDomain.GetLedger(ctx, &model.GetLedgerRequest{})
	require.NoError(t, err)
	require.Len(t, ledger.Entries, 1)
}

func Test_CreditDomain_RefundDraw(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	creditDomain := domain.NewCreditDomain(repository.NewCreditRepository())

	testutil.GrantCredits(ctx, "owner1", 2)
	require.NoError(t, creditDomain.DebitForDraw(ctx, "owner1", "draw1", 1))
	require.NoError(t, creditDomain.RefundDraw(ctx, "owner1", "draw1", 1))

	balance, err := creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(2), balance.Balance)

	ledger, err := creditDomain.GetLedger(ctx, &model.GetLedgerRequest{})
	require.NoError(t, err)
	require.Len(t, ledger.Entries, 3)

	// Newest first: refund, debit, purchase.
	require.Equal(t, "refund", ledger.Entries[0].Kind)
	require.Equal(t, "draw1", ledger.Entries[0].DrawID)
	require.Equal(t, "draw_usage", ledger.Entries[1].Kind)
	require.Equal(t, "purchase", ledger.Entries[2].Kind)
}

func Test_CreditDomain_BalancePerOwner(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	creditDomain := domain.NewCreditDomain(repository.NewCreditRepository())

	testutil.GrantCredits(ctx, "owner1", 5)
	testutil.GrantCredits(ctx, "owner2", 7)

	balance, err := creditDomain.GetBalance(ctx, &model.GetBalanceRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(5), balance.Balance)
}
