package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/accesshub/accesshub/internal/hub/domain"
	"github.com/accesshub/accesshub/internal/hub/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewStoreWithDB(db), mock
}

func TestConsumeRefreshTokenSingleWinner(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("hash-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.RefreshTokens().ConsumeRefreshToken(ctx, "hash-1"))

	// The losing caller sees zero rows affected and gets ErrNotFound.
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("hash-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.RefreshTokens().ConsumeRefreshToken(ctx, "hash-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePermissionMapsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO permissions`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "permissions_permission_key_key"})

	err := st.Permissions().CreatePermission(ctx, domain.Permission{
		ID:        "perm-1",
		Key:       "report:read",
		Resource:  "report",
		Action:    "read",
		Type:      domain.PermissionTypeCustom,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPermissionByKeyNotFound(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM permissions WHERE permission_key = \$1`).
		WithArgs("missing:key").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "service_id", "permission_key", "resource", "action",
			"description", "type", "created_at", "updated_at",
		}))

	_, err := st.Permissions().GetPermissionByKey(ctx, "missing:key")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklistExists(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT 1 FROM blacklisted_tokens WHERE jti = \$1`).
		WithArgs("jti-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	revoked, err := st.BlacklistedTokens().Exists(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	mock.ExpectQuery(`SELECT 1 FROM blacklisted_tokens WHERE jti = \$1`).
		WithArgs("jti-2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	revoked, err = st.BlacklistedTokens().Exists(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBlacklistSweepReportsRemovedCount(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)

	now := time.Now().Unix()
	mock.ExpectExec(`DELETE FROM blacklisted_tokens WHERE jti IN`).
		WithArgs(now, 500).
		WillReturnResult(sqlmock.NewResult(0, 42))

	removed, err := st.BlacklistedTokens().Sweep(ctx, now, 500)
	require.NoError(t, err)
	require.Equal(t, 42, removed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("hash-gone").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.RefreshTokens().ConsumeRefreshToken(ctx, "hash-gone")
	})
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO blacklisted_tokens`).
		WithArgs("jti-9", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.WithTx(ctx, func(tx store.Tx) error {
		return tx.BlacklistedTokens().Add(ctx, "jti-9", time.Now().Add(time.Hour))
	})
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
