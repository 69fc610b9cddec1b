package rates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/rates"
)

func TestService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := rates.NewMockRepository(ctrl)
	repo.EXPECT().Set(gomock.Any(), "EUR", 1.2).Return(nil)
	repo.EXPECT().Get(gomock.Any(), "EUR").Return(1.2, nil)
	repo.EXPECT().Get(gomock.Any(), "JPY").Return(0.0, rates.ErrNotFound)
	repo.EXPECT().All(gomock.Any()).Return(map[string]float64{"EUR": 1.2}, nil)

	svc := rates.NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "EUR", 1.2))

	rate, err := svc.Get(ctx, "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 1.2, rate, 1e-9)

	_, err = svc.Get(ctx, "JPY")
	assert.ErrorIs(t, err, rates.ErrNotFound)

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"EUR": 1.2}, all)
}
