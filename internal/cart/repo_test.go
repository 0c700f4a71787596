package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/farmdirect/farmdirect-backend/pkg/enums"
)

func TestMarkConvertedGuardsStatus(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	session := uuid.New()

	record, err := repo.GetOrCreateActive(context.Background(), session)
	require.NoError(t, err)

	ok, err := repo.MarkConverted(context.Background(), record.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.MarkConverted(context.Background(), record.ID)
	require.NoError(t, err)
	require.False(t, ok, "second conversion finds no active cart")

	fresh, err := repo.GetOrCreateActive(context.Background(), session)
	require.NoError(t, err)
	require.NotEqual(t, record.ID, fresh.ID, "converted cart is replaced, not reused")
	require.Equal(t, enums.CartStatusActive, fresh.Status)
}
