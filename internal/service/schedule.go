package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheuszbb/emprestimos/internal/models"
	"github.com/matheuszbb/emprestimos/internal/money"
)

// BuildSchedule splits a loan's gross repayment amount into n installments.
// Each installment is rounded to cents half-up; the rounding remainder
// (per×n − gross) is absorbed by the first installment so the amounts always
// sum exactly to gross. The correction is applied for both remainder signs:
// rounding half-up can land either side of the exact quotient.
//
// Installment i falls due 30×i days after start.
func BuildSchedule(gross decimal.Decimal, n int, start time.Time) ([]*models.Installment, error) {
	if n < models.MinInstallments || n > models.MaxInstallments {
		return nil, models.Invalid("quantidade de parcelas deve estar entre %d e %d",
			models.MinInstallments, models.MaxInstallments)
	}
	if gross.LessThanOrEqual(decimal.Zero) {
		return nil, models.Invalid("valor total do empréstimo deve ser positivo")
	}

	per := money.Round2(gross.Div(decimal.NewFromInt(int64(n))))
	remainder := per.Mul(decimal.NewFromInt(int64(n))).Sub(gross)

	schedule := make([]*models.Installment, 0, n)
	for i := 1; i <= n; i++ {
		amount := per
		if i == 1 {
			amount = per.Sub(remainder)
		}
		if amount.LessThanOrEqual(decimal.Zero) {
			return nil, models.Invalid("valor da parcela %d não é positivo", i)
		}
		schedule = append(schedule, &models.Installment{
			Number:    i,
			Amount:    amount,
			StartDate: start,
			DueDate:   start.AddDate(0, 0, 30*i),
		})
	}
	return schedule, nil
}

// LoanDueDate is the due date the loan itself receives after schedule
// generation: 30 days per installment past the start date.
func LoanDueDate(start time.Time, n int) time.Time {
	return start.AddDate(0, 0, 30*n)
}
