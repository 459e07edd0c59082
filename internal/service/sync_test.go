package service

import (
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/matheuszbb/emprestimos/internal/models"
)

// fakeLoanStore is an in-memory loanStateStore that counts writes.
type fakeLoanStore struct {
	loan         *models.Loan
	installments map[int64]*models.Installment
	writes       int
}

func newFakeLoanStore(n int) *fakeLoanStore {
	f := &fakeLoanStore{
		loan: &models.Loan{
			ID:           1,
			ClientID:     3,
			Installments: n,
			Principal:    decimal.RequireFromString("1000.00"),
		},
		installments: make(map[int64]*models.Installment),
	}
	for i := 1; i <= n; i++ {
		f.installments[int64(i)] = &models.Installment{
			ID:     int64(i),
			LoanID: 1,
			Number: i,
			Amount: decimal.RequireFromString("433.34"),
		}
	}
	return f
}

func (f *fakeLoanStore) GetLoan(id int64) (*models.Loan, error) {
	cp := *f.loan
	return &cp, nil
}

func (f *fakeLoanStore) CountUnpaidInstallments(loanID int64) (int, error) {
	n := 0
	for _, p := range f.installments {
		if !p.Paid {
			n++
		}
	}
	return n, nil
}

func (f *fakeLoanStore) StampInstallmentPaidAt(id int64, t time.Time) error {
	f.writes++
	f.installments[id].PaidAt = &t
	return nil
}

func (f *fakeLoanStore) SetLoanPaid(id int64, paid bool, paidAt *time.Time) error {
	f.writes++
	f.loan.Paid = paid
	f.loan.PaidAt = paidAt
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestSyncMarksLoanPaidWhenAllInstallmentsPaid(t *testing.T) {
	store := newFakeLoanStore(3)
	log := quietLogger()

	for i := 1; i <= 3; i++ {
		p := store.installments[int64(i)]
		p.Paid = true
		if err := SyncAfterInstallmentWrite(store, log, fixedNow, p); err != nil {
			t.Fatalf("sync after installment %d: %v", i, err)
		}
		if i < 3 && store.loan.Paid {
			t.Fatalf("loan marked paid after only %d installment(s)", i)
		}
	}

	if !store.loan.Paid {
		t.Fatal("loan not marked paid after final installment")
	}
	if store.loan.PaidAt == nil || !store.loan.PaidAt.Equal(fixedNow()) {
		t.Errorf("loan payment date = %v, want %v", store.loan.PaidAt, fixedNow())
	}
	for i := 1; i <= 3; i++ {
		if store.installments[int64(i)].PaidAt == nil {
			t.Errorf("installment %d payment date not stamped", i)
		}
	}
}

func TestSyncRevertsLoanWhenInstallmentUnpaid(t *testing.T) {
	store := newFakeLoanStore(2)
	log := quietLogger()

	for _, p := range store.installments {
		p.Paid = true
		now := fixedNow()
		p.PaidAt = &now
	}
	if err := SyncAfterInstallmentWrite(store, log, fixedNow, store.installments[1]); err != nil {
		t.Fatal(err)
	}
	if !store.loan.Paid {
		t.Fatal("loan not marked paid")
	}

	// Staff reverts one installment.
	reverted := store.installments[2]
	reverted.Paid = false
	reverted.PaidAt = nil
	if err := SyncAfterInstallmentWrite(store, log, fixedNow, reverted); err != nil {
		t.Fatal(err)
	}
	if store.loan.Paid {
		t.Fatal("loan still marked paid with an unpaid installment")
	}
	if store.loan.PaidAt != nil {
		t.Error("loan payment date not cleared on revert")
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	store := newFakeLoanStore(1)
	log := quietLogger()

	p := store.installments[1]
	p.Paid = true
	if err := SyncAfterInstallmentWrite(store, log, fixedNow, p); err != nil {
		t.Fatal(err)
	}
	writes := store.writes

	// Re-running with no state change must not write again.
	if err := SyncAfterInstallmentWrite(store, log, fixedNow, p); err != nil {
		t.Fatal(err)
	}
	if store.writes != writes {
		t.Errorf("idempotent re-sync performed %d extra write(s)", store.writes-writes)
	}
}

func TestSyncStampsMissingPaymentDate(t *testing.T) {
	store := newFakeLoanStore(2)
	p := store.installments[1]
	p.Paid = true

	if err := SyncAfterInstallmentWrite(store, quietLogger(), fixedNow, p); err != nil {
		t.Fatal(err)
	}
	if p.PaidAt == nil || !p.PaidAt.Equal(fixedNow()) {
		t.Errorf("payment date = %v, want %v", p.PaidAt, fixedNow())
	}
	if store.loan.Paid {
		t.Error("loan marked paid with one unpaid installment remaining")
	}
}

func TestSyncIgnoresOrphanInstallment(t *testing.T) {
	store := newFakeLoanStore(1)
	orphan := &models.Installment{ID: 99, Paid: true}

	if err := SyncAfterInstallmentWrite(store, quietLogger(), fixedNow, orphan); err != nil {
		t.Fatal(err)
	}
	if store.writes != 0 {
		t.Errorf("orphan installment caused %d write(s)", store.writes)
	}
	if err := SyncAfterInstallmentWrite(store, quietLogger(), fixedNow, nil); err != nil {
		t.Fatal(err)
	}
}
