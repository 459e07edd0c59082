package service

import (
	"time"

	"github.com/matheuszbb/emprestimos/internal/models"
	"github.com/matheuszbb/emprestimos/internal/money"
	"github.com/matheuszbb/emprestimos/internal/repository"
)

// reminderMailer is what the daily digest job needs from the e-mail sender.
type reminderMailer interface {
	SendPaymentReminder(to, username, clientName string, number int, dueDate time.Time, amount string, overdue bool) error
}

// SendDueReminders e-mails every responsible user about their unpaid
// installments due today or overdue. One failed address does not stop the
// rest of the batch.
func (s *Service) SendDueReminders(mailer reminderMailer) error {
	reminders, err := s.repo.ListDueReminders(s.now())
	if err != nil {
		return err
	}

	sent := 0
	for _, d := range reminders {
		err := mailer.SendPaymentReminder(d.Email, d.Username, d.ClientName,
			d.Number, d.DueDate, money.FormatBRL(d.Amount), d.Overdue)
		if err != nil {
			s.log.Errorf("Reminder for installment %d not sent to %s: %v", d.InstallmentID, d.Email, err)
			continue
		}
		sent++
	}
	s.log.Infof("Due reminders sent: %d of %d", sent, len(reminders))
	return nil
}

// CreateBotToken validates and stores a chat-bot credential
func (s *Service) CreateBotToken(t *models.BotToken) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.repo.CreateBotToken(t)
}

// CreateChat validates and stores a destination chat
func (s *Service) CreateChat(c *models.Chat) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.repo.CreateChat(c)
}

// CreateSubscription binds a user to a bot credential and destination chat
func (s *Service) CreateSubscription(sub *models.Subscription) error {
	if sub.OwnerID == 0 {
		return models.Invalid("dono é obrigatório")
	}
	return s.repo.CreateSubscription(sub)
}

// DeleteSubscription removes a subscription
func (s *Service) DeleteSubscription(id int64) error {
	return s.repo.DeleteSubscription(id)
}

// ListSubscriptions returns a user's notification subscriptions
func (s *Service) ListSubscriptions(ownerID int64) ([]*repository.SubscriptionDetail, error) {
	return s.repo.ListSubscriptionsByOwner(ownerID)
}
