package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheuszbb/emprestimos/internal/models"
	"github.com/matheuszbb/emprestimos/internal/money"
)

// Category classifies an installment's due date relative to today.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryDueTomorrow
	CategoryDueToday
	CategoryOverdue
)

// categoryFor compares dates in UTC, matching the selection queries.
func categoryFor(dueDate, today time.Time) Category {
	due := dueDate.UTC().Format("2006-01-02")
	ref := today.UTC()
	switch {
	case due < ref.Format("2006-01-02"):
		return CategoryOverdue
	case due == ref.Format("2006-01-02"):
		return CategoryDueToday
	case due == ref.AddDate(0, 0, 1).Format("2006-01-02"):
		return CategoryDueTomorrow
	default:
		return CategoryGeneric
	}
}

func title(number int, cat Category, escape bool) string {
	bang := "!"
	if escape {
		bang = `\!`
	}
	switch cat {
	case CategoryOverdue:
		return fmt.Sprintf("🚨 **Parcela %d VENCIDA%s**", number, bang)
	case CategoryDueToday:
		return fmt.Sprintf("⚠️ **Parcela %d vence HOJE%s**", number, bang)
	case CategoryDueTomorrow:
		return fmt.Sprintf("🔔 **Parcela %d vence AMANHÃ%s**", number, bang)
	default:
		return "📢 **Aviso de Parcela**"
	}
}

// AdminLoanURL builds the deep link into the admin record for a loan.
func AdminLoanURL(siteURL string, loanID int64) string {
	return fmt.Sprintf("%sadmin/loans/%d", siteURL, loanID)
}

// RenderMessage builds the notification text for one due installment,
// ending with the admin deep link. When platform is telegram the dynamic
// fields are escaped for the MarkdownV2 parse mode; the link URL itself
// is left alone (parentheses-delimited URLs take no field escaping).
func RenderMessage(d *DueInstallment, cat Category, platform, adminURL string) string {
	escape := platform == models.PlatformTelegram
	field := func(s string) string {
		if escape {
			return money.EscapeMarkdownV2(s)
		}
		return s
	}

	status := "Pendente"
	if d.Paid {
		status = "Paga"
	}

	lines := []string{
		title(d.Number, cat, escape),
		"",
		fmt.Sprintf("👤 Cliente: %s", field(d.ClientName)),
		fmt.Sprintf("💳 Parcela: %d de %d", d.Number, d.LoanInstallments),
		fmt.Sprintf("💰 Valor Empréstimo: %s", field(money.FormatBRL(d.LoanPrincipal))),
		fmt.Sprintf("💰 Valor Parcela: %s", field(money.FormatBRL(d.Amount))),
		fmt.Sprintf("📆 Início: %s", field(d.StartDate.Format("02/01/2006"))),
		fmt.Sprintf("📅 Vencimento: %s", field(d.DueDate.Format("02/01/2006"))),
		fmt.Sprintf("📈 Porcentagem: %s", field(d.InterestPercent.String()+"%")),
		fmt.Sprintf("🔗 Status: %s", status),
		fmt.Sprintf("👨‍💼 Responsável: %s", field(d.Username)),
		fmt.Sprintf("📝 Motivo: %s", field(d.Reason)),
		"",
		fmt.Sprintf("🔗 [Ver Empréstimo no Admin](%s)", adminURL),
	}
	return strings.Join(lines, "\n")
}
