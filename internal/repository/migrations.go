package repository

import (
	"database/sql"
	"fmt"
)

// RunMigrations creates the backoffice schema and tables when missing.
func RunMigrations(db *sql.DB) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS backoffice`,

		`CREATE TABLE IF NOT EXISTS backoffice.users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS backoffice.clients (
			id BIGSERIAL PRIMARY KEY,
			responsible_id BIGINT NOT NULL REFERENCES backoffice.users(id) ON DELETE CASCADE,
			name VARCHAR(100) NOT NULL,
			surname VARCHAR(255) NOT NULL DEFAULT '',
			full_name VARCHAR(355) NOT NULL DEFAULT '',
			cpf VARCHAR(11) NOT NULL DEFAULT '',
			max_outstanding NUMERIC(10,2) NOT NULL DEFAULT 10000,
			loan_limit NUMERIC(10,2) NOT NULL DEFAULT 1000,
			banned BOOLEAN NOT NULL DEFAULT FALSE,
			ban_reason TEXT NOT NULL DEFAULT '',
			banned_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE UNIQUE INDEX IF NOT EXISTS clients_responsible_cpf_idx
			ON backoffice.clients (responsible_id, cpf) WHERE cpf <> ''`,

		`CREATE TABLE IF NOT EXISTS backoffice.contacts (
			id BIGSERIAL PRIMARY KEY,
			client_id BIGINT NOT NULL REFERENCES backoffice.clients(id) ON DELETE CASCADE,
			type VARCHAR(20) NOT NULL,
			value VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS backoffice.loans (
			id BIGSERIAL PRIMARY KEY,
			responsible_id BIGINT NOT NULL REFERENCES backoffice.users(id) ON DELETE CASCADE,
			client_id BIGINT NOT NULL REFERENCES backoffice.clients(id) ON DELETE CASCADE,
			principal NUMERIC(10,2) NOT NULL,
			interest_percent NUMERIC(5,2) NOT NULL,
			installments INT NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			paid_at TIMESTAMPTZ,
			reason TEXT NOT NULL DEFAULT '',
			receipt BYTEA,
			receipt_mime VARCHAR(50) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS backoffice.installments (
			id BIGSERIAL PRIMARY KEY,
			loan_id BIGINT NOT NULL REFERENCES backoffice.loans(id) ON DELETE CASCADE,
			client_id BIGINT NOT NULL REFERENCES backoffice.clients(id) ON DELETE CASCADE,
			responsible_id BIGINT NOT NULL REFERENCES backoffice.users(id) ON DELETE CASCADE,
			number INT NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			paid_at TIMESTAMPTZ,
			receipt BYTEA,
			receipt_mime VARCHAR(50) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (loan_id, number)
		)`,

		`CREATE INDEX IF NOT EXISTS installments_due_date_idx
			ON backoffice.installments (due_date) WHERE NOT paid`,

		`CREATE TABLE IF NOT EXISTS backoffice.bot_tokens (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES backoffice.users(id) ON DELETE CASCADE,
			name VARCHAR(100) NOT NULL DEFAULT '',
			platform VARCHAR(20) NOT NULL,
			token VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS backoffice.chats (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES backoffice.users(id) ON DELETE CASCADE,
			name VARCHAR(100) NOT NULL DEFAULT '',
			platform VARCHAR(20) NOT NULL,
			chat_id VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS backoffice.subscriptions (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES backoffice.users(id) ON DELETE CASCADE,
			token_id BIGINT NOT NULL REFERENCES backoffice.bot_tokens(id) ON DELETE CASCADE,
			chat_ref_id BIGINT NOT NULL REFERENCES backoffice.chats(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
