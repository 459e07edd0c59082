package service

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matheuszbb/emprestimos/internal/models"
)

// loanStateStore is the slice of the repository the consistency maintainer
// needs. It only reads loan state and flips the paid flags.
type loanStateStore interface {
	GetLoan(id int64) (*models.Loan, error)
	CountUnpaidInstallments(loanID int64) (int, error)
	StampInstallmentPaidAt(id int64, t time.Time) error
	SetLoanPaid(id int64, paid bool, paidAt *time.Time) error
}

// SyncAfterInstallmentWrite keeps the parent loan's aggregate paid state
// consistent after an installment mutation. Called explicitly at every
// installment write site, inside the same request.
//
// Rules: a paid installment without a payment date gets stamped now; a loan
// whose installments are all paid is marked paid; a paid loan with an unpaid
// installment is reverted to pending. Repeated calls with no state change
// perform no further writes. An installment without a loan reference is a
// no-op.
func SyncAfterInstallmentWrite(store loanStateStore, log *logrus.Logger, now func() time.Time, inst *models.Installment) error {
	if inst == nil || inst.LoanID == 0 {
		return nil
	}

	if inst.Paid && inst.PaidAt == nil {
		t := now()
		if err := store.StampInstallmentPaidAt(inst.ID, t); err != nil {
			return err
		}
		inst.PaidAt = &t
	}

	loan, err := store.GetLoan(inst.LoanID)
	if err != nil {
		return err
	}
	unpaid, err := store.CountUnpaidInstallments(loan.ID)
	if err != nil {
		return err
	}

	switch {
	case unpaid == 0 && !loan.Paid:
		t := now()
		if err := store.SetLoanPaid(loan.ID, true, &t); err != nil {
			return err
		}
		log.Infof("Loan %d fully repaid", loan.ID)
	case unpaid > 0 && loan.Paid:
		if err := store.SetLoanPaid(loan.ID, false, nil); err != nil {
			return err
		}
		log.Infof("Loan %d reverted to pending, %d unpaid installment(s)", loan.ID, unpaid)
	}
	return nil
}

// CreateInstallment stores a manually created installment and re-syncs the
// parent loan. The declared count and number uniqueness are enforced here and
// again by the storage constraint.
func (s *Service) CreateInstallment(p *models.Installment) error {
	loan, err := s.repo.GetLoan(p.LoanID)
	if err != nil {
		return err
	}
	existing, err := s.repo.CountInstallments(p.LoanID)
	if err != nil {
		return err
	}
	if err := p.Validate(loan.Installments, existing); err != nil {
		return err
	}
	p.ClientID = loan.ClientID
	p.ResponsibleID = loan.ResponsibleID
	if err := s.repo.CreateInstallment(p); err != nil {
		return err
	}
	return SyncAfterInstallmentWrite(s.repo, s.log, s.now, p)
}

// UpdateInstallment persists an installment's mutable fields and re-syncs the
// parent loan's aggregate state.
func (s *Service) UpdateInstallment(p *models.Installment) error {
	original, err := s.repo.GetInstallment(p.ID)
	if err != nil {
		return err
	}
	if err := p.ValidateUpdate(original); err != nil {
		return err
	}
	if !p.Paid {
		p.PaidAt = nil
	}
	if err := s.repo.UpdateInstallment(p); err != nil {
		return err
	}
	return SyncAfterInstallmentWrite(s.repo, s.log, s.now, p)
}

// DeleteInstallment always refuses: installments only leave the database
// through the parent loan's cascade.
func (s *Service) DeleteInstallment(id int64) error {
	return models.Invalid("parcelas não podem ser apagadas diretamente; exclua o empréstimo para remover todas")
}

// GetInstallment retrieves an installment by id
func (s *Service) GetInstallment(id int64) (*models.Installment, error) {
	return s.repo.GetInstallment(id)
}

// ListInstallmentsByLoan returns a loan's installments ordered by number
func (s *Service) ListInstallmentsByLoan(loanID int64) ([]*models.Installment, error) {
	return s.repo.ListInstallmentsByLoan(loanID)
}

// SaveInstallmentReceipt stores an uploaded receipt for an installment
func (s *Service) SaveInstallmentReceipt(id int64, mime string, data []byte) error {
	if _, err := s.repo.GetInstallment(id); err != nil {
		return err
	}
	return s.repo.SaveInstallmentReceipt(id, mime, data)
}

// GetInstallmentReceipt loads an installment's stored receipt
func (s *Service) GetInstallmentReceipt(id int64) (string, []byte, error) {
	return s.repo.GetInstallmentReceipt(id)
}
