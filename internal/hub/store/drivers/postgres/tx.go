package postgres

import (
	"context"
	"database/sql"

	"github.com/accesshub/accesshub/internal/hub/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported
	return sql.ErrTxDone
}

func (t *txStore) Permissions() store.Permissions             { return &permissionsRepo{db: t.tx} }
func (t *txStore) Endpoints() store.Endpoints                 { return &endpointsRepo{db: t.tx} }
func (t *txStore) Roles() store.Roles                         { return &rolesRepo{db: t.tx} }
func (t *txStore) RolePermissions() store.RolePermissions     { return &rolePermissionsRepo{db: t.tx} }
func (t *txStore) Services() store.Services                   { return &servicesRepo{db: t.tx} }
func (t *txStore) Users() store.Users                         { return &usersRepo{db: t.tx} }
func (t *txStore) Tenants() store.Tenants                     { return &tenantsRepo{db: t.tx} }
func (t *txStore) Organizations() store.Organizations         { return &organizationsRepo{db: t.tx} }
func (t *txStore) RefreshTokens() store.RefreshTokens         { return &refreshTokensRepo{db: t.tx} }
func (t *txStore) BlacklistedTokens() store.BlacklistedTokens { return &blacklistRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
