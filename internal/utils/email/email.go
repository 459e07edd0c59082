package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/matheuszbb/emprestimos/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPaymentReminder sends an installment payment reminder email to the
// responsible staff user.
func (s *Sender) SendPaymentReminder(to, username, clientName string, number int, dueDate time.Time, amount string, overdue bool) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	if overdue {
		e.Subject = fmt.Sprintf("[%s] Parcela %d vencida - %s", s.cfg.BrandName, number, clientName)
	} else {
		e.Subject = fmt.Sprintf("[%s] Parcela %d a vencer - %s", s.cfg.BrandName, number, clientName)
	}

	body := fmt.Sprintf("Olá %s,\n\n", username)
	if overdue {
		body += fmt.Sprintf(
			"A parcela %d do cliente %s, no valor de %s, venceu em %s e segue em aberto.\n"+
				"Entre em contato com o cliente para regularizar o pagamento.\n",
			number, clientName, amount, dueDate.Format("02/01/2006"),
		)
	} else {
		body += fmt.Sprintf(
			"A parcela %d do cliente %s, no valor de %s, vence em %s.\n"+
				"Acompanhe o pagamento pelo painel administrativo.\n",
			number, clientName, amount, dueDate.Format("02/01/2006"),
		)
	}
	body += fmt.Sprintf("\nAtenciosamente,\n%s", s.cfg.BrandName)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
