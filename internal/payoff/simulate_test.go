package payoff

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/zoonmattau/budgeter-sub000/internal/model"
)

func twoDebts() []model.Debt {
	return []model.Debt{
		{ID: "A", Name: "Card", Balance: 500, InterestRate: 20, MinimumPayment: 25},
		{ID: "B", Name: "Car", Balance: 2000, InterestRate: 5, MinimumPayment: 50},
	}
}

func mixedDebts() []model.Debt {
	return []model.Debt{
		{ID: "visa", Balance: 4200, InterestRate: 24.99, MinimumPayment: 120},
		{ID: "store", Balance: 650, InterestRate: 17.5, MinimumPayment: 35},
		{ID: "auto", Balance: 9800, InterestRate: 6.4, MinimumPayment: 310},
		{ID: "student", Balance: 15500, InterestRate: 4.2, MinimumPayment: 160},
		{ID: "family", Balance: 1200, InterestRate: 0, MinimumPayment: 0},
	}
}

// checkInvariants asserts the properties every schedule must satisfy. The
// total owed can only rise in a month whose payments fall short of interest.
func checkInvariants(t *testing.T, s model.Schedule) {
	t.Helper()

	if !s.WontPayoff && len(s.Months) > 0 && s.Last().TotalRemaining != 0 {
		t.Fatalf("final TotalRemaining = %.2f, want 0", s.Last().TotalRemaining)
	}

	prevCum := 0.0
	prevRemaining := math.Inf(1)
	for i, m := range s.Months {
		if m.MonthIndex != i+1 {
			t.Errorf("month %d has MonthIndex %d", i+1, m.MonthIndex)
		}
		if m.CumulativeInterest < prevCum {
			t.Errorf("month %d: CumulativeInterest %.2f < previous %.2f", m.MonthIndex, m.CumulativeInterest, prevCum)
		}
		if m.TotalPaid >= m.InterestThisMonth && m.TotalRemaining > prevRemaining {
			t.Errorf("month %d: TotalRemaining %.2f > previous %.2f although paid %.2f covers interest %.2f",
				m.MonthIndex, m.TotalRemaining, prevRemaining, m.TotalPaid, m.InterestThisMonth)
		}
		if m.TotalPaid > m.InterestThisMonth && m.TotalRemaining >= prevRemaining {
			t.Errorf("month %d: paid %.2f > interest %.2f but TotalRemaining did not fall", m.MonthIndex, m.TotalPaid, m.InterestThisMonth)
		}
		sum := 0.0
		for id, b := range m.Balances {
			if b < 0 {
				t.Errorf("month %d: balance of %s = %.2f, want >= 0", m.MonthIndex, id, b)
			}
			sum += b
		}
		if math.Abs(sum-m.TotalRemaining) > 1e-6*math.Max(1, sum) {
			t.Errorf("month %d: balances sum to %.2f, TotalRemaining %.2f", m.MonthIndex, sum, m.TotalRemaining)
		}
		prevCum = m.CumulativeInterest
		prevRemaining = m.TotalRemaining
	}
}

func TestCalculate_SingleDebt(t *testing.T) {
	debts := []model.Debt{{ID: "loan", Balance: 1200, InterestRate: 12, MinimumPayment: 100}}

	s := Calculate(debts, 0, model.Avalanche)
	checkInvariants(t, s)

	// 1% a month on 1200 with 100 payments needs a 13th, partial payment.
	if s.Len() != 13 {
		t.Fatalf("Len = %d, want 13", s.Len())
	}
	for _, m := range s.Months[:12] {
		if m.Payments["loan"] != 100 {
			t.Errorf("month %d payment = %.2f, want 100", m.MonthIndex, m.Payments["loan"])
		}
	}
	if got := s.Months[0].InterestThisMonth; got != 12 {
		t.Errorf("first month interest = %.2f, want 12", got)
	}
	for i := 1; i < len(s.Months); i++ {
		if s.Months[i].InterestThisMonth > s.Months[i-1].InterestThisMonth {
			t.Errorf("interest rose in month %d", s.Months[i].MonthIndex)
		}
	}
	total := s.Last().CumulativeInterest
	if total <= 0 || total >= 120 {
		t.Errorf("total interest = %.2f, want in (0, 120)", total)
	}
	if math.Abs(total-84.78) > 0.02 {
		t.Errorf("total interest = %.2f, want ~84.78", total)
	}
}

func TestCalculate_ExtraCascadesWithinMonth(t *testing.T) {
	s := Calculate(twoDebts(), 100, model.Avalanche)
	checkInvariants(t, s)

	if !reflect.DeepEqual(s.Order, []string{"A", "B"}) {
		t.Fatalf("Order = %v, want [A B]", s.Order)
	}

	retired := -1
	for i, m := range s.Months {
		if m.Balances["A"] == 0 {
			retired = i
			break
		}
	}
	if retired < 1 {
		t.Fatalf("A retired at index %d, want a later month", retired)
	}

	// Before A clears, B gets only its minimum.
	for _, m := range s.Months[:retired] {
		if m.Payments["B"] != 50 {
			t.Errorf("month %d: B paid %.2f, want 50", m.MonthIndex, m.Payments["B"])
		}
		if m.Payments["A"] != 125 {
			t.Errorf("month %d: A paid %.2f, want 125", m.MonthIndex, m.Payments["A"])
		}
	}

	m := s.Months[retired]
	if m.Payments["B"] <= 50 {
		t.Errorf("month %d: B paid %.2f, want more than its minimum", m.MonthIndex, m.Payments["B"])
	}
	prevB := s.Months[retired-1].Balances["B"]
	interestB := prevB * 5 / 1200
	if m.Balances["B"] >= prevB+interestB-50 {
		t.Errorf("month %d: B balance %.2f not reduced beyond its minimum (prev %.2f)", m.MonthIndex, m.Balances["B"], prevB)
	}
	// From then on B gets A's minimum too: the whole 175 budget.
	if got := s.Months[retired+1].Payments["B"]; got != 175 {
		t.Errorf("month %d: B paid %.2f, want 175", retired+2, got)
	}
	if s.Len() != 15 {
		t.Errorf("Len = %d, want 15", s.Len())
	}
	if len(s.Payoffs) != 2 || s.Payoffs[0].ID != "A" || s.Payoffs[1].ID != "B" {
		t.Errorf("Payoffs = %+v, want A then B", s.Payoffs)
	}
}

func TestCalculate_StalledDebtFlagged(t *testing.T) {
	debts := []model.Debt{{ID: "iou", Balance: 100}}

	s := Calculate(debts, 0, model.Snowball)
	if !s.WontPayoff {
		t.Fatal("WontPayoff = false, want true")
	}
	if !reflect.DeepEqual(s.StalledDebtIDs, []string{"iou"}) {
		t.Errorf("StalledDebtIDs = %v, want [iou]", s.StalledDebtIDs)
	}
}

func TestCalculate_RetiredMinimumRollsOver(t *testing.T) {
	debts := []model.Debt{
		{ID: "A", Balance: 1000, InterestRate: 10, MinimumPayment: 100},
		{ID: "B", Balance: 100},
	}
	s := Calculate(debts, 0, model.Avalanche)
	checkInvariants(t, s)
	if s.WontPayoff {
		t.Fatalf("WontPayoff = true, stalled %v; B should get A's minimum once A clears", s.StalledDebtIDs)
	}
	if s.Len() != 12 {
		t.Fatalf("Len = %d, want 12", s.Len())
	}
	// A clears in month 11 owing less than its minimum; the rest goes to B.
	m := s.Months[10]
	if m.Balances["A"] != 0 || m.TotalPaid != 100 {
		t.Errorf("month 11 payments = %v, want A cleared and 100 paid in total", m.Payments)
	}
	if m.Payments["B"] <= 0 {
		t.Errorf("month 11: B paid %.2f, want the leftover of A's minimum", m.Payments["B"])
	}
	for _, m := range s.Months {
		if m.TotalPaid > 100 {
			t.Errorf("month %d: paid %.2f, more than the 100 budget", m.MonthIndex, m.TotalPaid)
		}
	}
}

func TestCalculate_MinimumBelowInterest(t *testing.T) {
	underwater := model.Debt{ID: "underwater", Balance: 10000, InterestRate: 24, MinimumPayment: 150} // 200 interest

	t.Run("alone", func(t *testing.T) {
		s := Calculate([]model.Debt{underwater}, 0, model.Avalanche)
		if !s.WontPayoff {
			t.Fatal("WontPayoff = false, want true")
		}
		if s.Len() != 0 {
			t.Errorf("Len = %d, want 0 for a debt that never shrinks", s.Len())
		}
		if !reflect.DeepEqual(s.StalledDebtIDs, []string{"underwater"}) {
			t.Errorf("StalledDebtIDs = %v, want [underwater]", s.StalledDebtIDs)
		}
	})

	t.Run("rescued by rollover", func(t *testing.T) {
		debts := []model.Debt{{ID: "ok", Balance: 1000, InterestRate: 10, MinimumPayment: 100}, underwater}
		s := Calculate(debts, 0, model.Avalanche)
		checkInvariants(t, s)
		if s.WontPayoff {
			t.Fatalf("WontPayoff = true, stalled %v", s.StalledDebtIDs)
		}
		if len(s.Payoffs) != 2 || s.Payoffs[0].ID != "ok" || s.Payoffs[0].Month != 11 {
			t.Errorf("Payoffs = %+v, want ok in month 11 first", s.Payoffs)
		}
		// The underwater balance grows until ok's minimum frees up.
		if s.Months[9].Balances["underwater"] <= 10000 {
			t.Errorf("month 10 underwater balance = %.2f, want above 10000", s.Months[9].Balances["underwater"])
		}
	})

	t.Run("rollover too small", func(t *testing.T) {
		debts := []model.Debt{{ID: "ok", Balance: 1000, InterestRate: 10, MinimumPayment: 20}, underwater}
		s := Calculate(debts, 0, model.Avalanche)
		if !s.WontPayoff {
			t.Fatal("WontPayoff = false, want true")
		}
		if !reflect.DeepEqual(s.StalledDebtIDs, []string{"underwater"}) {
			t.Errorf("StalledDebtIDs = %v, want [underwater]", s.StalledDebtIDs)
		}
		// Stops right after ok clears instead of running to the ceiling.
		if len(s.Payoffs) != 1 || s.Payoffs[0].ID != "ok" || s.Len() != s.Payoffs[0].Month {
			t.Errorf("Len = %d, Payoffs = %+v, want the run to end when ok clears", s.Len(), s.Payoffs)
		}
	})

	t.Run("enough extra", func(t *testing.T) {
		s := Calculate([]model.Debt{underwater}, 300, model.Avalanche)
		checkInvariants(t, s)
		if s.WontPayoff {
			t.Error("WontPayoff = true with 300 extra, want false")
		}
	})
}

func TestSimulate_CeilingReportsWontPayoff(t *testing.T) {
	// Shrinks every month, just not fast enough.
	debts := []model.Debt{{ID: "x", Balance: 100000, InterestRate: 1, MinimumPayment: 100}}
	s := Simulate(Plan{Debts: debts, ExtraPayment: 50, Strategy: model.Avalanche, MaxMonths: 60})
	if !s.WontPayoff {
		t.Fatal("WontPayoff = false, want true")
	}
	if s.Len() != 60 {
		t.Errorf("Len = %d, want 60 (ceiling)", s.Len())
	}
	if len(s.StalledDebtIDs) != 0 {
		t.Errorf("StalledDebtIDs = %v, want none for a debt that is still shrinking", s.StalledDebtIDs)
	}
	checkInvariants(t, s)
}

func TestCalculate_ZeroMinimumPaidFromExtra(t *testing.T) {
	debts := []model.Debt{{ID: "iou", Balance: 100}}
	s := Calculate(debts, 30, model.Avalanche)
	checkInvariants(t, s)
	if s.Len() != 4 {
		t.Fatalf("Len = %d, want 4", s.Len())
	}
	if got := s.Months[3].Payments["iou"]; got != 10 {
		t.Errorf("last payment = %.2f, want 10", got)
	}
	if s.Last().CumulativeInterest != 0 {
		t.Errorf("interest = %.2f, want 0", s.Last().CumulativeInterest)
	}
}

func TestCalculate_EmptyAndPaidOff(t *testing.T) {
	tests := []struct {
		name  string
		debts []model.Debt
	}{
		{"nil", nil},
		{"empty", []model.Debt{}},
		{"all zero", []model.Debt{{ID: "a"}, {ID: "b", InterestRate: 20, MinimumPayment: 40}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Calculate(tt.debts, 100, model.Avalanche)
			if s.Len() != 0 {
				t.Errorf("Len = %d, want 0", s.Len())
			}
			if s.WontPayoff {
				t.Error("WontPayoff = true, want false")
			}
			if got := Summarize(s).TotalInterest; got != 0 {
				t.Errorf("TotalInterest = %.2f, want 0", got)
			}
		})
	}
}

func TestCalculate_ClampsInvalidInput(t *testing.T) {
	debts := []model.Debt{
		{ID: "neg", Balance: -50, InterestRate: 10, MinimumPayment: 10},
		{ID: "nan", Balance: 300, InterestRate: math.NaN(), MinimumPayment: 100},
		{ID: "inf", Balance: 200, InterestRate: 5, MinimumPayment: math.Inf(1)},
	}

	s := Calculate(debts, -25, model.Avalanche)
	if s.ExtraPayment != 0 {
		t.Errorf("ExtraPayment = %.2f, want 0", s.ExtraPayment)
	}
	// "inf" has a zero minimum after clamping and waits for "nan" to clear.
	checkInvariants(t, s)
	if s.WontPayoff {
		t.Fatalf("WontPayoff = true, stalled %v", s.StalledDebtIDs)
	}
	if got := s.Months[0].Payments["inf"]; got != 0 {
		t.Errorf("month 1: inf paid %.2f, want 0", got)
	}
	if got := s.Months[3].Payments["inf"]; got != 100 {
		t.Errorf("month 4: inf paid %.2f, want 100 rolled over from nan", got)
	}

	s = Calculate(debts, math.Inf(1), model.Avalanche)
	if s.ExtraPayment != 0 {
		t.Errorf("ExtraPayment = %.2f, want 0 for +Inf", s.ExtraPayment)
	}

	s = Calculate(debts, 50, model.Avalanche)
	checkInvariants(t, s)
	if s.WontPayoff {
		t.Fatal("WontPayoff = true, want false")
	}
	if got := s.Months[0].Balances["neg"]; got != 0 {
		t.Errorf("negative balance clamped to %.2f, want 0", got)
	}
	if got := s.Months[0].Payments["neg"]; got != 0 {
		t.Errorf("paid %.2f to a zero balance, want 0", got)
	}
}

func TestCalculate_MinimumLargerThanOwed(t *testing.T) {
	debts := []model.Debt{{ID: "tiny", Balance: 40, InterestRate: 12, MinimumPayment: 100}}
	s := Calculate(debts, 0, model.Avalanche)
	checkInvariants(t, s)
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if got := s.Months[0].Payments["tiny"]; got != 40.4 {
		t.Errorf("payment = %.2f, want 40.40 (balance plus interest)", got)
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	debts := mixedDebts()
	a := Calculate(debts, 250, model.Snowball)
	b := Calculate(debts, 250, model.Snowball)
	if !reflect.DeepEqual(a, b) {
		t.Error("two runs with identical input differ")
	}
}

func TestCalculate_DoesNotMutateInput(t *testing.T) {
	debts := mixedDebts()
	before := make([]model.Debt, len(debts))
	copy(before, debts)

	Calculate(debts, 400, model.Avalanche)
	if !reflect.DeepEqual(debts, before) {
		t.Error("Calculate modified its input debts")
	}
}

func TestCalculate_InvariantsAcrossInputs(t *testing.T) {
	for _, strategy := range model.Strategies {
		for _, extra := range []float64{0, 25, 100, 333.33, 1000, 50000} {
			s := Calculate(mixedDebts()[:4], extra, strategy)
			if s.WontPayoff {
				t.Errorf("%s/%.2f: WontPayoff, want payoff", strategy, extra)
				continue
			}
			checkInvariants(t, s)
		}
	}
}

// randomDebts builds n debts whose minimums range from well below their
// monthly interest to comfortably above it.
func randomDebts(rng *rand.Rand, n int) []model.Debt {
	round := func(x float64) float64 { return math.Round(x*100) / 100 }
	debts := make([]model.Debt, n)
	for i := range debts {
		balance := round(100 + rng.Float64()*19900)
		rate := math.Round(rng.Float64()*300) / 10
		interest := balance * math.Max(rate, 3) / 1200
		bump := []float64{0, 0, 10, 25}[rng.Intn(4)]
		debts[i] = model.Debt{
			ID:             string(rune('a' + i)),
			Balance:        balance,
			InterestRate:   rate,
			MinimumPayment: round(rng.Float64()*1.5*interest + bump),
		}
	}
	return debts
}

func distinctRates(debts []model.Debt) bool {
	seen := make(map[float64]bool, len(debts))
	for _, d := range debts {
		if seen[d.InterestRate] {
			return false
		}
		seen[d.InterestRate] = true
	}
	return true
}

func TestSimulate_RandomDebtSets(t *testing.T) {
	rng := rand.New(rand.NewSource(20261016))
	extras := []float64{0, 50, 300}

	for n := 0; n < 120; n++ {
		debts := randomDebts(rng, 1+rng.Intn(5))

		var prev [2]model.Summary
		for k, extra := range extras {
			av := Calculate(debts, extra, model.Avalanche)
			sb := Calculate(debts, extra, model.Snowball)
			checkInvariants(t, av)
			checkInvariants(t, sb)

			a, s := Summarize(av), Summarize(sb)
			if distinctRates(debts) {
				if a.WontPayoff && !s.WontPayoff {
					t.Errorf("set %d extra %.0f: avalanche never pays off but snowball does: %+v", n, extra, debts)
				}
				if !a.WontPayoff && !s.WontPayoff && a.TotalInterest > s.TotalInterest {
					t.Errorf("set %d extra %.0f: avalanche interest %.2f > snowball %.2f: %+v", n, extra, a.TotalInterest, s.TotalInterest, debts)
				}
			}

			for i, cur := range []model.Summary{a, s} {
				p := prev[i]
				if k > 0 && !p.WontPayoff {
					if cur.WontPayoff || cur.Months > p.Months || cur.TotalInterest > p.TotalInterest {
						t.Errorf("set %d %s: extra %.0f gave %d months / %.2f interest, less extra gave %d / %.2f",
							n, cur.Strategy, extra, cur.Months, cur.TotalInterest, p.Months, p.TotalInterest)
					}
				}
				prev[i] = cur
			}
		}
	}
}

func TestCalculate_MonotonicInExtraPayment(t *testing.T) {
	for _, strategy := range model.Strategies {
		prev := Summarize(Calculate(mixedDebts(), 10, strategy))
		for _, extra := range []float64{20, 50, 75, 150, 300, 600, 1200} {
			cur := Summarize(Calculate(mixedDebts(), extra, strategy))
			if cur.Months > prev.Months {
				t.Errorf("%s: months rose from %d to %d when extra went to %.0f", strategy, prev.Months, cur.Months, extra)
			}
			if cur.TotalInterest > prev.TotalInterest {
				t.Errorf("%s: interest rose from %.2f to %.2f when extra went to %.0f", strategy, prev.TotalInterest, cur.TotalInterest, extra)
			}
			prev = cur
		}
	}
}

func TestCalculate_AvalancheNeverCostsMoreInterest(t *testing.T) {
	debts := []model.Debt{
		{ID: "a", Balance: 3000, InterestRate: 22, MinimumPayment: 90},
		{ID: "b", Balance: 800, InterestRate: 9, MinimumPayment: 30},
		{ID: "c", Balance: 5000, InterestRate: 14, MinimumPayment: 125},
		{ID: "d", Balance: 1500, InterestRate: 3.5, MinimumPayment: 40},
	}
	for _, extra := range []float64{0, 50, 200, 500} {
		av := Summarize(Calculate(debts, extra, model.Avalanche))
		sb := Summarize(Calculate(debts, extra, model.Snowball))
		if av.TotalInterest > sb.TotalInterest {
			t.Errorf("extra %.0f: avalanche interest %.2f > snowball %.2f", extra, av.TotalInterest, sb.TotalInterest)
		}
	}
}

func TestCalculate_UnknownStrategyFallsBackToAvalanche(t *testing.T) {
	got := Calculate(twoDebts(), 100, model.Strategy("mystery"))
	want := Calculate(twoDebts(), 100, model.Avalanche)
	if !reflect.DeepEqual(got, want) {
		t.Error("unknown strategy did not behave like avalanche")
	}
}
