package rules_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/FumingPower3925/HoneyBear-Folio/internal/rules"
)

func TestService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	params := rules.Params{
		MatchField:   "payee",
		MatchPattern: "Cafe",
		ActionField:  "category",
		ActionValue:  "Food",
	}

	repo := rules.NewMockRepository(ctrl)
	repo.EXPECT().Create(gomock.Any(), params).Return(&rules.Rule{ID: 1, MatchPattern: "Cafe"}, nil)
	repo.EXPECT().List(gomock.Any()).Return([]*rules.Rule{{ID: 1}}, nil)
	repo.EXPECT().Update(gomock.Any(), int64(1), params).Return(&rules.Rule{ID: 1}, nil)
	repo.EXPECT().Reorder(gomock.Any(), []int64{2, 1}).Return(nil)
	repo.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
	repo.EXPECT().Delete(gomock.Any(), int64(9)).Return(rules.ErrNotFound)

	svc := rules.NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.Update(ctx, 1, params)
	require.NoError(t, err)

	require.NoError(t, svc.Reorder(ctx, []int64{2, 1}))
	require.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 9), rules.ErrNotFound)
}
