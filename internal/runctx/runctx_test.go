package runctx

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AssignsUUID(t *testing.T) {
	ctx := New(context.Background(), "notino")
	r := From(ctx)
	_, err := uuid.Parse(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "notino", r.Site)
	assert.NotEqual(t, r.ID, From(New(context.Background(), "notino")).ID)
}

func TestFrom_Missing(t *testing.T) {
	assert.Equal(t, "unknown", From(context.Background()).ID)
}

func TestItemError(t *testing.T) {
	base := errors.New("boom")
	ctx := New(context.Background(), "inkeylist")
	err := NewItemError(ctx, "https://x/p", base)

	assert.ErrorIs(t, err, base)
	var item *ItemError
	require.ErrorAs(t, err, &item)
	assert.Equal(t, From(ctx).ID, item.RunID)
	assert.Contains(t, err.Error(), "https://x/p")
}
