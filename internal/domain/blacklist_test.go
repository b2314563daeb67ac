package domain_test

import (
	"testing"

	"github.com/drawlab/backend/internal/domain"
	"github.com/drawlab/backend/internal/model"
	"github.com/drawlab/backend/internal/repository"
	"github.com/drawlab/backend/pkg/errorx"
	"github.com/drawlab/backend/pkg/testutil"
	"github.com/drawlab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_BlacklistDomain_AddAndGet(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	blacklistDomain := domain.NewBlacklistDomain(repository.NewBlacklistRepository())

	_, err := blacklistDomain.Add(ctx, &model.AddBlacklistRequest{
		Handles: []string{" @BadUser ", "worse_user"},
	})
	require.NoError(t, err)

	resp, err := blacklistDomain.Get(ctx, &model.GetBlacklistRequest{})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"baduser", "worse_user"}, resp.Handles)
}

func Test_BlacklistDomain_AddIsIdempotent(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	blacklistDomain := domain.NewBlacklistDomain(repository.NewBlacklistRepository())

	_, err := blacklistDomain.Add(ctx, &model.AddBlacklistRequest{Handles: []string{"@BadUser"}})
	require.NoError(t, err)

	// The same handle in a different raw form maps to the same entry.
	_, err = blacklistDomain.Add(ctx, &model.AddBlacklistRequest{Handles: []string{"baduser"}})
	require.NoError(t, err)

	resp, err := blacklistDomain.Get(ctx, &model.GetBlacklistRequest{})
	require.NoError(t, err)
	require.Equal(t, []string{"baduser"}, resp.Handles)
}

func Test_BlacklistDomain_Remove(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	blacklistDomain := domain.NewBlacklistDomain(repository.NewBlacklistRepository())

	_, err := blacklistDomain.Add(ctx, &model.AddBlacklistRequest{Handles: []string{"baduser"}})
	require.NoError(t, err)

	_, err = blacklistDomain.Remove(ctx, &model.RemoveBlacklistRequest{Handle: "@BadUser"})
	require.NoError(t, err)

	resp, err := blacklistDomain.Get(ctx, &model.GetBlacklistRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Handles)

	_, err = blacklistDomain.Remove(ctx, &model.RemoveBlacklistRequest{Handle: "baduser"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})
}

func Test_BlacklistDomain_InvalidHandle(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	blacklistDomain := domain.NewBlacklistDomain(repository.NewBlacklistRepository())

	_, err := blacklistDomain.Add(ctx, &model.AddBlacklistRequest{Handles: nil})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = blacklistDomain.Add(ctx, &model.AddBlacklistRequest{Handles: []string{" @ "}})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})
}

func Test_BlacklistDomain_ScopedPerOwner(t *testing.T) {
	ctx := testutil.MockContextWithUserID("owner1")
	blacklistDomain := domain.NewBlacklistDomain(repository.NewBlacklistRepository())

	_, err := blacklistDomain.Add(ctx, &model.AddBlacklistRequest{Handles: []string{"baduser"}})
	require.NoError(t, err)

	otherCtx := xcontext.WithRequestUserID(ctx, "owner2")
	resp, err := blacklistDomain.Get(otherCtx, &model.GetBlacklistRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Handles)
}
