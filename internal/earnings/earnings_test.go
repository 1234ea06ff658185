package earnings

import (
	"database/sql"
	"testing"

	"plowmarket/internal/models"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		name       string
		amount     float64
		rate       float64
		wantFee    float64
		wantPayout float64
	}{
		{"thirty", 30, 0.10, 3, 27},
		{"forty five", 45, 0.10, 4.5, 40.5},
		{"twenty five", 25, 0.10, 2.5, 22.5},
		{"zero", 0, 0.10, 0, 0},
		{"odd cents", 19.99, 0.10, 2.00, 17.99},
		{"rounds down", 10.04, 0.10, 1.00, 9.04},
		{"rounds up", 10.06, 0.10, 1.01, 9.05},
		{"custom rate", 100, 0.15, 15, 85},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fee, payout := Split(tc.amount, tc.rate)
			if fee != tc.wantFee {
				t.Errorf("Split(%v, %v): fee = %v, ожидалось %v", tc.amount, tc.rate, fee, tc.wantFee)
			}
			if payout != tc.wantPayout {
				t.Errorf("Split(%v, %v): payout = %v, ожидалось %v", tc.amount, tc.rate, payout, tc.wantPayout)
			}
		})
	}
}

// Комиссия плюс выплата всегда дают ровно исходную сумму.
func TestSplitInvariant(t *testing.T) {
	amounts := []float64{0, 0.01, 1, 9.99, 10.05, 25, 30, 45, 100, 1234.56, 99999.99}
	for _, a := range amounts {
		fee, payout := Split(a, 0.10)
		if fee+payout != a {
			t.Errorf("Split(%v): fee %v + payout %v != %v", a, fee, payout, a)
		}
	}
}

// Сценарий из практики: три задания по $30, $45 и $25 дают комиссию $10
// и суммарный заработок $90.
func TestSplitThreeJobsScenario(t *testing.T) {
	var totalFee, totalEarned float64
	for _, amount := range []float64{30, 45, 25} {
		fee, payout := Split(amount, 0.10)
		totalFee += fee
		totalEarned += payout
	}
	if totalFee != 10 {
		t.Errorf("суммарная комиссия = %v, ожидалось 10", totalFee)
	}
	if totalEarned != 90 {
		t.Errorf("суммарный заработок = %v, ожидалось 90", totalEarned)
	}
}

func TestPendingPayout(t *testing.T) {
	cases := []struct {
		name   string
		earned float64
		paid   float64
		want   float64
	}{
		{"nothing earned", 0, 0, 0},
		{"nothing paid", 90, 0, 90},
		{"partially paid", 90, 50, 40},
		{"fully paid", 90, 90, 0},
		// Выплачено больше, чем заработано (гонка параллельных расчётов) -
		// остаток не уходит в минус.
		{"overpaid floors at zero", 90, 120, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PendingPayout(tc.earned, tc.paid); got != tc.want {
				t.Errorf("PendingPayout(%v, %v) = %v, ожидалось %v", tc.earned, tc.paid, got, tc.want)
			}
		})
	}
}

func TestJobsTotal(t *testing.T) {
	jobs := []models.Job{
		{ID: 1, MaxPrice: sql.NullFloat64{Float64: 30, Valid: true}},
		{ID: 2, MaxPrice: sql.NullFloat64{Float64: 45, Valid: true}},
		{ID: 3, MaxPrice: sql.NullFloat64{Float64: 25, Valid: true}},
	}
	// Ручной расчёт платит сырую цену задания ($100), а не заработок
	// за вычетом комиссии ($90).
	if got := JobsTotal(jobs); got != 100 {
		t.Errorf("JobsTotal = %v, ожидалось 100", got)
	}
}

func TestJobsTotalPricePreference(t *testing.T) {
	jobs := []models.Job{
		// final_price имеет приоритет над max_price
		{ID: 1, MaxPrice: sql.NullFloat64{Float64: 50, Valid: true}, FinalPrice: sql.NullFloat64{Float64: 40, Valid: true}},
		// только max_price
		{ID: 2, MaxPrice: sql.NullFloat64{Float64: 20, Valid: true}},
		// цены нет вообще - задание даёт 0
		{ID: 3},
	}
	if got := JobsTotal(jobs); got != 60 {
		t.Errorf("JobsTotal = %v, ожидалось 60", got)
	}
	if got := JobsTotal(nil); got != 0 {
		t.Errorf("JobsTotal(nil) = %v, ожидалось 0", got)
	}
}
