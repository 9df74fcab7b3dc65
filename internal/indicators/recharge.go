package indicators

import (
	"cmp"
	"slices"

	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/stats"
)

func init() {
	Register(recharges("amount_recharges", amountRecharges))
	Register(recharges("interevent_time_recharges", intereventTimeRecharges))
	Register(recharges("percent_pareto_recharges", percentParetoRecharges))
	Register(recharges("number_of_recharges", numberOfRecharges))
	Register(averageBalance{})
}

func amountRecharges(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	amounts := make([]float64, 0, len(bin.Recharges))
	for _, r := range bin.Recharges {
		amounts = append(amounts, r.Amount)
	}
	return stats.SummaryStats(amounts), nil
}

func intereventTimeRecharges(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	return stats.SummaryStats(intervals(bin.Recharges)), nil
}

// percentParetoRecharges is the share of recharges, largest first, that make
// up 80% of the amount recharged
func percentParetoRecharges(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	if len(bin.Recharges) == 0 {
		return nil, nil
	}
	amounts := make([]float64, 0, len(bin.Recharges))
	for _, r := range bin.Recharges {
		amounts = append(amounts, r.Amount)
	}
	slices.SortFunc(amounts, func(a, b float64) int { return cmp.Compare(b, a) })

	total := stats.Sum(amounts)
	var partial float64
	count := 0
	for _, a := range amounts {
		partial += a
		count++
		if partial >= ParetoPercentage*total {
			break
		}
	}
	return stats.Num(float64(count) / float64(len(amounts))), nil
}

func numberOfRecharges(bin engine.Bin, _ *engine.User) (stats.Value, error) {
	return stats.Num(float64(len(bin.Recharges))), nil
}

// averageBalance estimates the average daily balance from all recharges,
// assuming linear usage between recharges and an empty balance before each.
// It is not divided by period or parameters.
type averageBalance struct{}

func (averageBalance) Name() string {
	return "average_balance_recharges"
}

func (averageBalance) Compute(u *engine.User, _ ...engine.Option) (*engine.Tree, error) {
	recharges := u.Recharges()
	if len(recharges) == 0 {
		return engine.Leaf(nil), nil
	}

	days := func(d float64) float64 { return float64(int64(d / 24)) }

	var balance float64
	for i := 1; i < len(recharges); i++ {
		r1, r2 := recharges[i-1], recharges[i]
		balance += r1.Amount * days(r2.DateTime.Sub(r1.DateTime).Hours()) / 2
	}
	span := days(recharges[len(recharges)-1].DateTime.Sub(recharges[0].DateTime).Hours())
	if span == 0 {
		return engine.Leaf(nil), nil
	}
	avg := balance / span
	return engine.Leaf(&avg), nil
}
