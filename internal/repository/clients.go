package repository

import (
	"database/sql"
	"fmt"

	"github.com/matheuszbb/emprestimos/internal/models"
)

// ClientFilters is the enumerated set of predicates the client listing
// recognizes. Unknown filter keys never reach the query builder.
type ClientFilters struct {
	ResponsibleID int64
	Banned        *bool
	Search        string
}

const clientColumns = `id, responsible_id, name, surname, full_name, cpf,
	max_outstanding, loan_limit, banned, ban_reason, banned_at, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (*models.Client, error) {
	c := &models.Client{}
	err := row.Scan(&c.ID, &c.ResponsibleID, &c.Name, &c.Surname, &c.FullName, &c.CPF,
		&c.MaxOutstanding, &c.LoanLimit, &c.Banned, &c.BanReason, &c.BannedAt,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateClient creates a new client in the database
func (r *Repository) CreateClient(c *models.Client) error {
	c.FullName = c.DisplayName()
	query := `
		INSERT INTO backoffice.clients
			(responsible_id, name, surname, full_name, cpf, max_outstanding, loan_limit,
			 banned, ban_reason, banned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, c.ResponsibleID, c.Name, c.Surname, c.FullName, c.CPF,
		c.MaxOutstanding, c.LoanLimit, c.Banned, c.BanReason, c.BannedAt).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return models.Invalid("CPF já está em uso")
	}
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetClient retrieves a client by id
func (r *Repository) GetClient(id int64) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM backoffice.clients WHERE id = $1`
	c, err := scanClient(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.Invalid("cliente %d não encontrado", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return c, nil
}

// UpdateClient persists mutable client fields
func (r *Repository) UpdateClient(c *models.Client) error {
	c.FullName = c.DisplayName()
	query := `
		UPDATE backoffice.clients
		SET name = $1, surname = $2, full_name = $3, cpf = $4, max_outstanding = $5,
			loan_limit = $6, banned = $7, ban_reason = $8, banned_at = $9,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $10
		RETURNING updated_at`
	err := r.db.QueryRow(query, c.Name, c.Surname, c.FullName, c.CPF, c.MaxOutstanding,
		c.LoanLimit, c.Banned, c.BanReason, c.BannedAt, c.ID).Scan(&c.UpdatedAt)
	if isUniqueViolation(err) {
		return models.Invalid("CPF já está em uso")
	}
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

// DeleteClient removes a client and, via cascade, its loans and installments
func (r *Repository) DeleteClient(id int64) error {
	res, err := r.db.Exec(`DELETE FROM backoffice.clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Invalid("cliente %d não encontrado", id)
	}
	return nil
}

// ListClients retrieves clients matching the given filters
func (r *Repository) ListClients(f ClientFilters) ([]*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM backoffice.clients WHERE 1=1`
	var args []any

	if f.ResponsibleID != 0 {
		args = append(args, f.ResponsibleID)
		query += fmt.Sprintf(" AND responsible_id = $%d", len(args))
	}
	if f.Banned != nil {
		args = append(args, *f.Banned)
		query += fmt.Sprintf(" AND banned = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%", f.Search)
		query += fmt.Sprintf(" AND (full_name ILIKE $%d OR cpf = $%d)", len(args)-1, len(args))
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*models.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
