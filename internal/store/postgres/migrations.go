package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

type migration struct {
	name string
	up   string
}

// migrations is applied in order. Every statement is idempotent.
var migrations = []migration{
	{
		name: "create_bullets",
		up: `
CREATE TABLE IF NOT EXISTS bullets (
    owner_id    TEXT PRIMARY KEY,
    balance     BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
    version     BIGINT NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_bullets_updated_at ON bullets (updated_at DESC);
`,
	},
	{
		name: "create_bullet_transactions",
		up: `
CREATE TABLE IF NOT EXISTS bullet_transactions (
    id            UUID PRIMARY KEY,
    owner_id      TEXT NOT NULL REFERENCES bullets (owner_id),
    delta         BIGINT NOT NULL CHECK (delta <> 0),
    reason        TEXT NOT NULL CHECK (reason <> ''),
    created_by    TEXT NOT NULL,
    request_id    TEXT,
    balance_after BIGINT NOT NULL CHECK (balance_after >= 0),
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_bullet_tx_owner_created ON bullet_transactions (owner_id, created_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_bullet_tx_owner_request ON bullet_transactions (owner_id, request_id)
    WHERE request_id IS NOT NULL;
`,
	},
	{
		name: "create_boosts",
		up: `
CREATE TABLE IF NOT EXISTS boosts (
    id          UUID PRIMARY KEY,
    entity_id   TEXT NOT NULL,
    entity_type TEXT NOT NULL DEFAULT 'listing' CHECK (entity_type IN ('listing', 'company')),
    starts_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    ends_at     TIMESTAMPTZ NOT NULL,
    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
    payment_id  TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CHECK (ends_at > starts_at)
);

CREATE INDEX IF NOT EXISTS idx_boosts_active_ends ON boosts (ends_at) WHERE is_active;
CREATE INDEX IF NOT EXISTS idx_boosts_entity ON boosts (entity_type, entity_id);
`,
	},
}

// Migrate creates the ledger and boost tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.up); err != nil {
			return fmt.Errorf("postgres: migration %s failed: %w", m.name, err)
		}
	}
	return nil
}
