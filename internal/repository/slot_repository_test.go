package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"logbook/backend/internal/repository"
	"logbook/backend/internal/repository/testutil"
)

func TestSlotRepository_LoadAbsent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSlotRepository(db)

	payload, err := repo.Load(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, payload)
}

func TestSlotRepository_SaveAndLoad(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSlotRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "k", []byte(`["a"]`)))

	payload, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, `["a"]`, string(payload))
}

func TestSlotRepository_SaveReplaces(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := repository.NewSlotRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "k", []byte("one")))
	require.NoError(t, repo.Save(ctx, "k", []byte("two")))

	payload, err := repo.Load(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "two", string(payload))
}
