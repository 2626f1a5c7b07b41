package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(255) NOT NULL,
		login_name VARCHAR(255) UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'user',
		manager_id BIGINT REFERENCES users(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Supplementary many-to-many manager assignments. The primary pointer
	// users.manager_id stays for backward compatibility with older records.
	`CREATE TABLE IF NOT EXISTS user_managers (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id),
		manager_id BIGINT NOT NULL REFERENCES users(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, manager_id)
	)`,

	`CREATE TABLE IF NOT EXISTS todos (
		id BIGSERIAL PRIMARY KEY,
		text VARCHAR(500) NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMP WITH TIME ZONE,
		created_by BIGINT NOT NULL REFERENCES users(id),
		assigned_to BIGINT REFERENCES users(id),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_users_manager_id ON users(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_managers_user_id ON user_managers(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_managers_manager_id ON user_managers(manager_id)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_created_by ON todos(created_by)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_assigned_to ON todos(assigned_to)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
