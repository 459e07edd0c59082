package service

import (
	"github.com/matheuszbb/emprestimos/internal/models"
	"github.com/matheuszbb/emprestimos/internal/money"
	"github.com/matheuszbb/emprestimos/internal/repository"
)

// CreateClient validates and stores a new client
func (s *Service) CreateClient(c *models.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.repo.CreateClient(c); err != nil {
		return err
	}
	s.log.Infof("Client created: %d (%s)", c.ID, c.FullName)
	return nil
}

// UpdateClient validates and persists changes to an existing client
func (s *Service) UpdateClient(c *models.Client) error {
	original, err := s.repo.GetClient(c.ID)
	if err != nil {
		return err
	}
	if err := c.ValidateUpdate(original); err != nil {
		return err
	}
	if c.Banned && !original.Banned && c.BannedAt == nil {
		t := s.now()
		c.BannedAt = &t
	}
	return s.repo.UpdateClient(c)
}

// CreateLoan validates a new loan against its client's limits and persists it
// together with the generated installment schedule, in one transaction.
func (s *Service) CreateLoan(loan *models.Loan) error {
	if err := loan.ValidateCreate(); err != nil {
		return err
	}

	client, err := s.repo.GetClient(loan.ClientID)
	if err != nil {
		return err
	}
	if client.Banned {
		when := "data desconhecida"
		if client.BannedAt != nil {
			when = client.BannedAt.Format("02/01/2006")
		}
		return models.Invalid("não é permitido criar um novo empréstimo para o cliente '%s', banido desde %s",
			client.FullName, when)
	}
	if loan.Principal.GreaterThan(client.LoanLimit) {
		return models.Invalid("o valor ultrapassa o limite de %s por empréstimo",
			money.FormatBRL(client.LoanLimit))
	}
	pending, err := s.repo.PendingPrincipal(loan.ClientID)
	if err != nil {
		return err
	}
	if pending.Add(loan.Principal).GreaterThan(client.MaxOutstanding) {
		return models.Invalid("total de empréstimos pendentes: %s; o novo valor ultrapassa o limite de %s",
			money.FormatBRL(pending), money.FormatBRL(client.MaxOutstanding))
	}

	if loan.StartDate.IsZero() {
		loan.StartDate = s.now()
	}

	schedule, err := BuildSchedule(loan.GrossRepayment(), loan.Installments, loan.StartDate)
	if err != nil {
		return err
	}
	loan.DueDate = LoanDueDate(loan.StartDate, loan.Installments)

	if err := s.repo.CreateLoanWithSchedule(loan, schedule); err != nil {
		return err
	}

	s.log.Infof("Loan %d created for client %d: %s in %d installments",
		loan.ID, loan.ClientID, money.FormatBRL(loan.GrossRepayment()), loan.Installments)
	return nil
}

// UpdateLoan persists changes to a loan's mutable fields, enforcing the
// immutability and paid-state invariants.
func (s *Service) UpdateLoan(loan *models.Loan) error {
	original, err := s.repo.GetLoan(loan.ID)
	if err != nil {
		return err
	}
	unpaid, err := s.repo.CountUnpaidInstallments(loan.ID)
	if err != nil {
		return err
	}
	if err := loan.ValidateUpdate(original, unpaid); err != nil {
		return err
	}

	if loan.Paid && loan.PaidAt == nil {
		t := s.now()
		loan.PaidAt = &t
	}
	if !loan.Paid {
		loan.PaidAt = nil
	}
	return s.repo.UpdateLoan(loan)
}

// DeleteLoan removes a loan and cascades to its installments
func (s *Service) DeleteLoan(id int64) error {
	if err := s.repo.DeleteLoan(id); err != nil {
		return err
	}
	s.log.Infof("Loan %d deleted", id)
	return nil
}

// GetLoan retrieves a loan by id
func (s *Service) GetLoan(id int64) (*models.Loan, error) {
	return s.repo.GetLoan(id)
}

// ListLoans retrieves loans matching the given filters
func (s *Service) ListLoans(f repository.LoanFilters) ([]*models.Loan, error) {
	return s.repo.ListLoans(f)
}

// GetClient retrieves a client by id
func (s *Service) GetClient(id int64) (*models.Client, error) {
	return s.repo.GetClient(id)
}

// ListClients retrieves clients matching the given filters
func (s *Service) ListClients(f repository.ClientFilters) ([]*models.Client, error) {
	return s.repo.ListClients(f)
}

// DeleteClient removes a client and everything owned by it
func (s *Service) DeleteClient(id int64) error {
	return s.repo.DeleteClient(id)
}

// CreateContact validates and stores a new contact for an existing client
func (s *Service) CreateContact(c *models.Contact) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := s.repo.GetClient(c.ClientID); err != nil {
		return err
	}
	return s.repo.CreateContact(c)
}

// ListContacts retrieves a client's contacts
func (s *Service) ListContacts(clientID int64) ([]*models.Contact, error) {
	return s.repo.ListContactsByClient(clientID)
}

// DeleteContact removes a contact
func (s *Service) DeleteContact(id int64) error {
	return s.repo.DeleteContact(id)
}

// SaveLoanReceipt stores an uploaded receipt for a loan
func (s *Service) SaveLoanReceipt(id int64, mime string, data []byte) error {
	if _, err := s.repo.GetLoan(id); err != nil {
		return err
	}
	return s.repo.SaveLoanReceipt(id, mime, data)
}

// GetLoanReceipt loads a loan's stored receipt
func (s *Service) GetLoanReceipt(id int64) (string, []byte, error) {
	return s.repo.GetLoanReceipt(id)
}
