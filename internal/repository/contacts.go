package repository

import (
	"fmt"

	"github.com/matheuszbb/emprestimos/internal/models"
)

// CreateContact stores a new contact for a client
func (r *Repository) CreateContact(c *models.Contact) error {
	query := `
		INSERT INTO backoffice.contacts (client_id, type, value)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, c.ClientID, c.Type, c.Value).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// ListContactsByClient retrieves a client's contacts
func (r *Repository) ListContactsByClient(clientID int64) ([]*models.Contact, error) {
	rows, err := r.db.Query(`
		SELECT id, client_id, type, value, created_at
		FROM backoffice.contacts
		WHERE client_id = $1
		ORDER BY id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*models.Contact
	for rows.Next() {
		c := &models.Contact{}
		if err := rows.Scan(&c.ID, &c.ClientID, &c.Type, &c.Value, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

// DeleteContact removes a contact
func (r *Repository) DeleteContact(id int64) error {
	res, err := r.db.Exec(`DELETE FROM backoffice.contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Invalid("contato %d não encontrado", id)
	}
	return nil
}
