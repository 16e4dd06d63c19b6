package services

import (
	"context"
	"testing"

	"captionvote/internal/models"
	"captionvote/internal/store"
	"captionvote/internal/testutil"
	"captionvote/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAuthService_Login(t *testing.T) {
	conn := testutil.NewDB(t)
	hash, err := utils.HashPassword("hunter22")
	require.NoError(t, err)
	user := &models.User{Email: "a@example.com", Password: hash}
	require.NoError(t, conn.Create(user).Error)

	svc := NewAuthService(store.NewUserStore(conn), zap.NewNop())
	ctx := context.Background()

	got, err := svc.Login(ctx, " A@example.com ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, "a@example.com", "wrong")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	current, err := svc.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", current.Email)

	_, err = svc.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = svc.CurrentUser(ctx, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}
