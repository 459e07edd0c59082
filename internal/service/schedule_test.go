package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var scheduleStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

func TestBuildScheduleThousandBySplitOfThree(t *testing.T) {
	schedule, err := BuildSchedule(decimal.RequireFromString("1000.00"), 3, scheduleStart)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}

	want := []string{"333.34", "333.33", "333.33"}
	for i, p := range schedule {
		if got := p.Amount.StringFixed(2); got != want[i] {
			t.Errorf("installment %d amount = %s, want %s", i+1, got, want[i])
		}
	}

	sum := decimal.Zero
	for _, p := range schedule {
		sum = sum.Add(p.Amount)
	}
	if !sum.Equal(decimal.RequireFromString("1000.00")) {
		t.Errorf("sum = %s, want 1000.00", sum)
	}
}

func TestBuildScheduleSumIsExact(t *testing.T) {
	grosses := []string{"12.12", "100.00", "1000.00", "1234.56", "9999.99", "130.00", "777.77", "0.03"}
	for _, g := range grosses {
		gross := decimal.RequireFromString(g)
		for n := 1; n <= 12; n++ {
			schedule, err := BuildSchedule(gross, n, scheduleStart)
			if err != nil {
				// Tiny grosses cannot always produce positive installments.
				continue
			}
			sum := decimal.Zero
			for i, p := range schedule {
				if p.Number != i+1 {
					t.Errorf("gross %s n %d: installment %d numbered %d", g, n, i+1, p.Number)
				}
				if !p.Amount.IsPositive() {
					t.Errorf("gross %s n %d: installment %d amount %s not positive", g, n, p.Number, p.Amount)
				}
				sum = sum.Add(p.Amount)
			}
			if !sum.Equal(gross) {
				t.Errorf("gross %s n %d: sum %s", g, n, sum)
			}
			if len(schedule) != n {
				t.Errorf("gross %s n %d: %d installments", g, n, len(schedule))
			}
			// Only the first installment may differ from the rounded quotient.
			for _, p := range schedule[1:] {
				if !p.Amount.Equal(schedule[len(schedule)-1].Amount) {
					t.Errorf("gross %s n %d: remainder leaked past installment 1", g, n)
				}
			}
		}
	}
}

func TestBuildScheduleDueDates(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	schedule, err := BuildSchedule(decimal.RequireFromString("1300.00"), 3, start)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}

	for i, p := range schedule {
		want := start.AddDate(0, 0, 30*(i+1))
		if !p.DueDate.Equal(want) {
			t.Errorf("installment %d due %v, want %v", i+1, p.DueDate, want)
		}
		if !p.StartDate.Equal(start) {
			t.Errorf("installment %d start %v, want %v", i+1, p.StartDate, start)
		}
	}

	if got, want := LoanDueDate(start, 3), start.AddDate(0, 0, 90); !got.Equal(want) {
		t.Errorf("LoanDueDate = %v, want %v", got, want)
	}
}

func TestBuildScheduleBounds(t *testing.T) {
	if _, err := BuildSchedule(decimal.RequireFromString("100.00"), 0, scheduleStart); err == nil {
		t.Error("n=0 accepted")
	}
	if _, err := BuildSchedule(decimal.RequireFromString("100.00"), 13, scheduleStart); err == nil {
		t.Error("n=13 accepted")
	}
	if _, err := BuildSchedule(decimal.Zero, 3, scheduleStart); err == nil {
		t.Error("zero gross accepted")
	}
}

func TestBuildScheduleSingleInstallment(t *testing.T) {
	schedule, err := BuildSchedule(decimal.RequireFromString("130.00"), 1, scheduleStart)
	if err != nil {
		t.Fatalf("BuildSchedule: %v", err)
	}
	if len(schedule) != 1 || schedule[0].Amount.StringFixed(2) != "130.00" {
		t.Errorf("unexpected schedule: %+v", schedule)
	}
}
