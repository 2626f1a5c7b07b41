package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leaf-oneplus/todolist/internal/database"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTokenService(t *testing.T) (*TokenService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewTokenService(&database.DB{Pool: mock}), mock
}

func TestTokenService_StoreRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)

	expiresAt := time.Now().Add(time.Hour)
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(pgxmock.AnyArg(), int64(1), "hash", expiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := svc.StoreRefreshToken(context.Background(), 1, "hash", expiresAt)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ValidateRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs("hash").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(int64(7)))

	userID, err := svc.ValidateRefreshToken(context.Background(), "hash")

	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_ValidateRefreshToken_Expired(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectQuery(`SELECT user_id FROM refresh_tokens`).
		WithArgs("hash").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.ValidateRefreshToken(context.Background(), "hash")

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_RevokeRefreshToken(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = .+`).
		WithArgs("hash").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, svc.RevokeRefreshToken(context.Background(), "hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_RevokeAllUserTokens(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id = .+`).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, svc.RevokeAllUserTokens(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenService_CleanupExpired(t *testing.T) {
	svc, mock := setupTokenService(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < NOW`).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, svc.CleanupExpired(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
