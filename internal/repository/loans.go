package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheuszbb/emprestimos/internal/models"
)

// LoanFilters is the enumerated set of predicates the loan listing recognizes.
type LoanFilters struct {
	ClientID      int64
	ResponsibleID int64
	Paid          *bool
	OverdueOnly   bool
}

const loanColumns = `id, responsible_id, client_id, principal, interest_percent,
	installments, start_date, due_date, paid, paid_at, reason, receipt_mime,
	created_at, updated_at`

func scanLoan(row interface{ Scan(...any) error }) (*models.Loan, error) {
	l := &models.Loan{}
	err := row.Scan(&l.ID, &l.ResponsibleID, &l.ClientID, &l.Principal, &l.InterestPercent,
		&l.Installments, &l.StartDate, &l.DueDate, &l.Paid, &l.PaidAt, &l.Reason,
		&l.ReceiptMIME, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CreateLoanWithSchedule inserts a loan and its full installment schedule in a
// single transaction. A duplicate installment number aborts the whole write.
func (r *Repository) CreateLoanWithSchedule(loan *models.Loan, schedule []*models.Installment) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	loanQuery := `
		INSERT INTO backoffice.loans
			(responsible_id, client_id, principal, interest_percent, installments,
			 start_date, due_date, paid, reason, receipt, receipt_mime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(loanQuery, loan.ResponsibleID, loan.ClientID, loan.Principal,
		loan.InterestPercent, loan.Installments, loan.StartDate, loan.DueDate,
		loan.Paid, loan.Reason, loan.Receipt, loan.ReceiptMIME).
		Scan(&loan.ID, &loan.CreatedAt, &loan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}

	instQuery := `
		INSERT INTO backoffice.installments
			(loan_id, client_id, responsible_id, number, amount, start_date, due_date, paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		RETURNING id, created_at, updated_at`
	for _, p := range schedule {
		p.LoanID = loan.ID
		p.ClientID = loan.ClientID
		p.ResponsibleID = loan.ResponsibleID
		err = tx.QueryRow(instQuery, p.LoanID, p.ClientID, p.ResponsibleID, p.Number,
			p.Amount, p.StartDate, p.DueDate).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
		if isUniqueViolation(err) {
			return models.Invalid("já existe uma parcela número %d para este empréstimo", p.Number)
		}
		if err != nil {
			return fmt.Errorf("failed to create installment %d: %w", p.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit loan creation: %w", err)
	}
	return nil
}

// GetLoan retrieves a loan by id, without the receipt payload
func (r *Repository) GetLoan(id int64) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM backoffice.loans WHERE id = $1`
	l, err := scanLoan(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.Invalid("empréstimo %d não encontrado", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find loan: %w", err)
	}
	return l, nil
}

// UpdateLoan persists the mutable loan fields (paid state and reason)
func (r *Repository) UpdateLoan(l *models.Loan) error {
	query := `
		UPDATE backoffice.loans
		SET paid = $1, paid_at = $2, reason = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
		RETURNING updated_at`
	err := r.db.QueryRow(query, l.Paid, l.PaidAt, l.Reason, l.ID).Scan(&l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update loan: %w", err)
	}
	return nil
}

// SetLoanPaid flips the loan's paid flag and payment date
func (r *Repository) SetLoanPaid(id int64, paid bool, paidAt *time.Time) error {
	query := `
		UPDATE backoffice.loans
		SET paid = $1, paid_at = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`
	if _, err := r.db.Exec(query, paid, paidAt, id); err != nil {
		return fmt.Errorf("failed to set loan paid state: %w", err)
	}
	return nil
}

// DeleteLoan removes a loan; its installments go with it via cascade
func (r *Repository) DeleteLoan(id int64) error {
	res, err := r.db.Exec(`DELETE FROM backoffice.loans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Invalid("empréstimo %d não encontrado", id)
	}
	return nil
}

// PendingPrincipal sums the principal of a client's unpaid loans
func (r *Repository) PendingPrincipal(clientID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `
		SELECT COALESCE(SUM(principal), 0)
		FROM backoffice.loans
		WHERE client_id = $1 AND NOT paid`
	if err := r.db.QueryRow(query, clientID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum pending principal: %w", err)
	}
	return total, nil
}

// ListLoans retrieves loans matching the given filters
func (r *Repository) ListLoans(f LoanFilters) ([]*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM backoffice.loans WHERE 1=1`
	var args []any

	if f.ClientID != 0 {
		args = append(args, f.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if f.ResponsibleID != 0 {
		args = append(args, f.ResponsibleID)
		query += fmt.Sprintf(" AND responsible_id = $%d", len(args))
	}
	if f.Paid != nil {
		args = append(args, *f.Paid)
		query += fmt.Sprintf(" AND paid = $%d", len(args))
	}
	if f.OverdueOnly {
		query += " AND NOT paid AND due_date < CURRENT_TIMESTAMP"
	}
	query += " ORDER BY id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// SaveLoanReceipt stores the uploaded receipt bytes and MIME type
func (r *Repository) SaveLoanReceipt(id int64, mime string, data []byte) error {
	res, err := r.db.Exec(`
		UPDATE backoffice.loans
		SET receipt = $1, receipt_mime = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`, data, mime, id)
	if err != nil {
		return fmt.Errorf("failed to save loan receipt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Invalid("empréstimo %d não encontrado", id)
	}
	return nil
}

// GetLoanReceipt loads the stored receipt bytes and MIME type
func (r *Repository) GetLoanReceipt(id int64) (string, []byte, error) {
	var mime string
	var data []byte
	err := r.db.QueryRow(`
		SELECT receipt_mime, receipt FROM backoffice.loans WHERE id = $1`, id).
		Scan(&mime, &data)
	if err == sql.ErrNoRows {
		return "", nil, models.Invalid("empréstimo %d não encontrado", id)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to load loan receipt: %w", err)
	}
	return mime, data, nil
}
