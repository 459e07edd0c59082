package notifier

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DB wraps the read-only query set used by the dispatcher. It queries the
// storage schema directly instead of going through the service layer: the
// dispatcher never writes loan or installment state, and the flat joins
// here fetch everything a notification needs in one round trip.
type DB struct {
	conn *sql.DB
}

// NewDB wraps an open database handle.
func NewDB(conn *sql.DB) *DB {
	return &DB{conn: conn}
}

// DueInstallment is one unpaid installment joined with its loan, client
// and responsible user, as selected by the due-date queries.
type DueInstallment struct {
	InstallmentID    int64
	Number           int
	Amount           decimal.Decimal
	StartDate        time.Time
	DueDate          time.Time
	Paid             bool
	LoanID           int64
	LoanPrincipal    decimal.Decimal
	LoanInstallments int
	InterestPercent  decimal.Decimal
	Reason           string
	ClientName       string
	ResponsibleID    int64
	Username         string
}

// The due-date cast is pinned to UTC so selection agrees with the
// category headers regardless of the database session's timezone.
const dueInstallmentQuery = `
	SELECT p.id, p.number, p.amount, p.start_date, p.due_date, p.paid,
	       l.id, l.principal, l.installments, l.interest_percent, l.reason,
	       c.full_name, l.responsible_id, COALESCE(u.username, '')
	FROM backoffice.installments p
	JOIN backoffice.loans l ON l.id = p.loan_id
	JOIN backoffice.clients c ON c.id = p.client_id
	LEFT JOIN backoffice.users u ON u.id = l.responsible_id
	WHERE NOT p.paid AND (p.due_date AT TIME ZONE 'UTC')::date %s $1::date
	ORDER BY p.due_date, p.id`

func (db *DB) selectDue(operator string, day time.Time) ([]*DueInstallment, error) {
	rows, err := db.conn.Query(fmt.Sprintf(dueInstallmentQuery, operator), day.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to query due installments: %w", err)
	}
	defer rows.Close()

	var due []*DueInstallment
	for rows.Next() {
		d := &DueInstallment{}
		if err := rows.Scan(&d.InstallmentID, &d.Number, &d.Amount, &d.StartDate,
			&d.DueDate, &d.Paid, &d.LoanID, &d.LoanPrincipal, &d.LoanInstallments,
			&d.InterestPercent, &d.Reason, &d.ClientName, &d.ResponsibleID,
			&d.Username); err != nil {
			return nil, fmt.Errorf("failed to scan due installment: %w", err)
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// DueTomorrow lists unpaid installments due exactly one day after today.
func (db *DB) DueTomorrow(today time.Time) ([]*DueInstallment, error) {
	return db.selectDue("=", today.AddDate(0, 0, 1))
}

// DueToday lists unpaid installments due today.
func (db *DB) DueToday(today time.Time) ([]*DueInstallment, error) {
	return db.selectDue("=", today)
}

// Overdue lists unpaid installments whose due date has already passed.
func (db *DB) Overdue(today time.Time) ([]*DueInstallment, error) {
	return db.selectDue("<", today)
}

// Delivery is one resolved notification target: a platform, a bot
// credential and a destination chat.
type Delivery struct {
	SubscriptionID int64
	Platform       string
	Token          string
	ChatID         string
}

// Subscriptions resolves the notification targets registered by a user.
func (db *DB) Subscriptions(ownerID int64) ([]*Delivery, error) {
	rows, err := db.conn.Query(`
		SELECT n.id, c.platform, t.token, c.chat_id
		FROM backoffice.subscriptions n
		JOIN backoffice.bot_tokens t ON t.id = n.token_id
		JOIN backoffice.chats c ON c.id = n.chat_ref_id
		WHERE n.owner_id = $1
		ORDER BY n.id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var targets []*Delivery
	for rows.Next() {
		d := &Delivery{}
		if err := rows.Scan(&d.SubscriptionID, &d.Platform, &d.Token, &d.ChatID); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		targets = append(targets, d)
	}
	return targets, rows.Err()
}
