package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheuszbb/emprestimos/internal/models"
)

const installmentColumns = `id, loan_id, client_id, responsible_id, number, amount,
	start_date, due_date, paid, paid_at, receipt_mime, created_at, updated_at`

func scanInstallment(row interface{ Scan(...any) error }) (*models.Installment, error) {
	p := &models.Installment{}
	err := row.Scan(&p.ID, &p.LoanID, &p.ClientID, &p.ResponsibleID, &p.Number,
		&p.Amount, &p.StartDate, &p.DueDate, &p.Paid, &p.PaidAt, &p.ReceiptMIME,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateInstallment inserts a single installment. The unique (loan_id, number)
// constraint rejects duplicate numbers at the record level.
func (r *Repository) CreateInstallment(p *models.Installment) error {
	query := `
		INSERT INTO backoffice.installments
			(loan_id, client_id, responsible_id, number, amount, start_date, due_date,
			 paid, paid_at, receipt, receipt_mime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, p.LoanID, p.ClientID, p.ResponsibleID, p.Number,
		p.Amount, p.StartDate, p.DueDate, p.Paid, p.PaidAt, p.Receipt, p.ReceiptMIME).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return models.Invalid("já existe uma parcela número %d para este empréstimo", p.Number)
	}
	if err != nil {
		return fmt.Errorf("failed to create installment: %w", err)
	}
	return nil
}

// GetInstallment retrieves an installment by id, without the receipt payload
func (r *Repository) GetInstallment(id int64) (*models.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM backoffice.installments WHERE id = $1`
	p, err := scanInstallment(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.Invalid("parcela %d não encontrada", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find installment: %w", err)
	}
	return p, nil
}

// ListInstallmentsByLoan returns a loan's installments ordered by number
func (r *Repository) ListInstallmentsByLoan(loanID int64) ([]*models.Installment, error) {
	query := `SELECT ` + installmentColumns + `
		FROM backoffice.installments WHERE loan_id = $1 ORDER BY number`
	rows, err := r.db.Query(query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list installments: %w", err)
	}
	defer rows.Close()

	var installments []*models.Installment
	for rows.Next() {
		p, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment: %w", err)
		}
		installments = append(installments, p)
	}
	return installments, rows.Err()
}

// CountInstallments returns how many installments a loan already has
func (r *Repository) CountInstallments(loanID int64) (int, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM backoffice.installments WHERE loan_id = $1`, loanID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count installments: %w", err)
	}
	return n, nil
}

// CountUnpaidInstallments returns how many of a loan's installments are unpaid
func (r *Repository) CountUnpaidInstallments(loanID int64) (int, error) {
	var n int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM backoffice.installments WHERE loan_id = $1 AND NOT paid`, loanID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid installments: %w", err)
	}
	return n, nil
}

// UpdateInstallment persists the mutable installment fields (paid state)
func (r *Repository) UpdateInstallment(p *models.Installment) error {
	query := `
		UPDATE backoffice.installments
		SET paid = $1, paid_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
		RETURNING updated_at`
	err := r.db.QueryRow(query, p.Paid, p.PaidAt, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update installment: %w", err)
	}
	return nil
}

// StampInstallmentPaidAt records the payment date of a paid installment
func (r *Repository) StampInstallmentPaidAt(id int64, t time.Time) error {
	_, err := r.db.Exec(`
		UPDATE backoffice.installments
		SET paid_at = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`, t, id)
	if err != nil {
		return fmt.Errorf("failed to stamp installment payment date: %w", err)
	}
	return nil
}

// SaveInstallmentReceipt stores the uploaded receipt bytes and MIME type
func (r *Repository) SaveInstallmentReceipt(id int64, mime string, data []byte) error {
	res, err := r.db.Exec(`
		UPDATE backoffice.installments
		SET receipt = $1, receipt_mime = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`, data, mime, id)
	if err != nil {
		return fmt.Errorf("failed to save installment receipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Invalid("parcela %d não encontrada", id)
	}
	return nil
}

// GetInstallmentReceipt loads the stored receipt bytes and MIME type
func (r *Repository) GetInstallmentReceipt(id int64) (string, []byte, error) {
	var mime string
	var data []byte
	err := r.db.QueryRow(`
		SELECT receipt_mime, receipt FROM backoffice.installments WHERE id = $1`, id).
		Scan(&mime, &data)
	if err == sql.ErrNoRows {
		return "", nil, models.Invalid("parcela %d não encontrada", id)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load installment receipt: %w", err)
	}
	return mime, data, nil
}

// DueReminder is one row of the daily e-mail digest query: an unpaid
// installment joined with its responsible user's address.
type DueReminder struct {
	InstallmentID int64
	Number        int
	Amount        decimal.Decimal
	DueDate       time.Time
	ClientName    string
	Username      string
	Email         string
	Overdue       bool
}

// ListDueReminders returns unpaid installments due on the given day, or
// overdue relative to it, joined with the responsible user's e-mail.
func (r *Repository) ListDueReminders(today time.Time) ([]*DueReminder, error) {
	query := `
		SELECT p.id, p.number, p.amount, p.due_date, c.full_name,
			u.username, u.email, p.due_date::date < $1::date AS overdue
		FROM backoffice.installments p
		JOIN backoffice.clients c ON c.id = p.client_id
		JOIN backoffice.users u ON u.id = p.responsible_id
		WHERE NOT p.paid AND p.due_date::date <= $1::date
		ORDER BY p.due_date, p.id`
	rows, err := r.db.Query(query, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*DueReminder
	for rows.Next() {
		d := &DueReminder{}
		if err := rows.Scan(&d.InstallmentID, &d.Number, &d.Amount, &d.DueDate,
			&d.ClientName, &d.Username, &d.Email, &d.Overdue); err != nil {
			return nil, fmt.Errorf("failed to scan due reminder: %w", err)
		}
		reminders = append(reminders, d)
	}
	return reminders, rows.Err()
}
