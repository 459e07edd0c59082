package notifier

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/matheuszbb/emprestimos/internal/integrations/discord"
	"github.com/matheuszbb/emprestimos/internal/integrations/telegram"
	"github.com/matheuszbb/emprestimos/internal/models"
)

// retryDelays are the waits between successive delivery attempts. With
// the immediate first attempt this gives six attempts per message.
var retryDelays = []time.Duration{
	10 * time.Second,
	20 * time.Second,
	60 * time.Second,
	120 * time.Second,
	300 * time.Second,
}

// healthPollInterval is the wait between health-gate polls.
const healthPollInterval = 1 * time.Second

// TextSender delivers one rendered message to a chat, attaching the
// admin deep link when the platform supports link buttons.
type TextSender interface {
	Send(ctx context.Context, chatID, text, linkURL string) error
}

type telegramSender struct{ bot *telegram.Bot }

func (s *telegramSender) Send(ctx context.Context, chatID, text, linkURL string) error {
	keyboard := telegram.InlineKeyboard([]telegram.LinkButton{
		{Text: "Ver Empréstimo no Admin", URL: linkURL},
	})
	_, err := s.bot.SendMessage(ctx, chatID, text, keyboard)
	return err
}

type discordSender struct{ bot *discord.Bot }

func (s *discordSender) Send(ctx context.Context, chatID, text, linkURL string) error {
	buttons := []discord.LinkButton{
		{Text: "Ver Empréstimo no Admin", URL: linkURL},
	}
	_, err := s.bot.SendMessage(ctx, chatID, text, buttons)
	return err
}

func newSender(platform, token string) (TextSender, error) {
	switch platform {
	case models.PlatformTelegram:
		bot, err := telegram.New(token)
		if err != nil {
			return nil, err
		}
		return &telegramSender{bot: bot}, nil
	case models.PlatformDiscord:
		bot, err := discord.New(token)
		if err != nil {
			return nil, err
		}
		return &discordSender{bot: bot}, nil
	default:
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
}

// Notifier is the due-installment notification dispatcher. It wakes once
// per day, selects installments due tomorrow, due today and overdue, and
// fans out one delivery goroutine per subscription.
type Notifier struct {
	db      *DB
	log     *logrus.Logger
	siteURL string

	newSender func(platform, token string) (TextSender, error)
	sleep     func(time.Duration)
	now       func() time.Time

	wg sync.WaitGroup
}

// New creates a dispatcher over a read-only database handle.
func New(db *DB, log *logrus.Logger, siteURL string) *Notifier {
	return &Notifier{
		db:        db,
		log:       log,
		siteURL:   siteURL,
		newSender: newSender,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// WaitHealthy polls the service health endpoint every second until it
// answers 200. It blocks indefinitely: the dispatcher must not touch
// storage before the main service is reachable. The poll runs before
// the Notifier itself exists, so this is a package function.
func WaitHealthy(ctx context.Context, log *logrus.Logger, siteURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	healthURL := siteURL + "health"
	for {
		log.Warnf("Verificando saúde do serviço em %s...", healthURL)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			log.Errorf("Erro ao verificar saúde do serviço: %v", err)
		} else {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				log.Warn("Serviço está saudável.")
				return nil
			}
			log.Warnf("Serviço retornou status %d.", resp.StatusCode)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(healthPollInterval):
		}
	}
}

// Run executes notification cycles forever, sleeping until the next
// local midnight between cycles. The wait is re-derived every cycle so
// an overrunning cycle does not drift the schedule.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		if err := n.RunCycle(ctx); err != nil {
			n.log.Errorf("Falha no ciclo de notificações: %v", err)
		}
		n.log.Warn("Notificações enviadas. Aguardando até a próxima meia-noite...")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(untilNextMidnight(n.now())):
		}
	}
}

// untilNextMidnight computes the wait from now to the next local midnight.
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

// RunCycle selects the three due-date categories and dispatches
// deliveries. It returns after spawning the delivery goroutines; their
// retries overlap the midnight sleep.
func (n *Notifier) RunCycle(ctx context.Context) error {
	today := n.now()

	queries := []func(time.Time) ([]*DueInstallment, error){
		n.db.DueTomorrow,
		n.db.DueToday,
		n.db.Overdue,
	}
	for _, query := range queries {
		due, err := query(today)
		if err != nil {
			return err
		}
		for _, d := range due {
			if err := n.notify(ctx, d, categoryFor(d.DueDate, today)); err != nil {
				n.log.Errorf("Falha ao resolver notificações da parcela %d: %v", d.InstallmentID, err)
			}
		}
	}
	return nil
}

// notify fans out one delivery goroutine per subscription of the
// installment's responsible user.
func (n *Notifier) notify(ctx context.Context, d *DueInstallment, cat Category) error {
	targets, err := n.db.Subscriptions(d.ResponsibleID)
	if err != nil {
		return err
	}
	linkURL := AdminLoanURL(n.siteURL, d.LoanID)
	for _, target := range targets {
		sender, err := n.newSender(target.Platform, target.Token)
		if err != nil {
			n.log.Errorf("Assinatura %d ignorada: %v", target.SubscriptionID, err)
			continue
		}
		text := RenderMessage(d, cat, target.Platform, linkURL)
		chatID := target.ChatID

		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.deliver(ctx, sender, chatID, text, linkURL)
		}()
	}
	return nil
}

// deliver attempts a delivery with backoff. Failures stay contained
// here: after the last attempt the message is dropped with an error log.
func (n *Notifier) deliver(ctx context.Context, sender TextSender, chatID, text, linkURL string) {
	for attempt := 0; attempt <= len(retryDelays); attempt++ {
		err := sender.Send(ctx, chatID, text, linkURL)
		if err == nil {
			n.log.Warnf("Mensagem enviada para %s após %d tentativa(s).", chatID, attempt)
			return
		}
		if attempt == len(retryDelays) {
			n.log.Errorf("Mensagem NÃO enviada para %s após %d tentativas. Erro final: %v", chatID, attempt+1, err)
			return
		}
		delay := retryDelays[attempt]
		n.log.Warnf("Tentativa %d falhou para %s. Erro: %v. Retentando em %s...", attempt+1, chatID, err, delay)
		n.sleep(delay)
	}
}

// Wait blocks until all in-flight deliveries finish.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
