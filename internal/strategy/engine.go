package strategy

import "TrendSentinel/internal/model"

// Evaluation is the outcome of one pass over an indicator series.
type Evaluation struct {
	Signal model.Signal
	Latest model.IndicatorRow
}

// Detect compares the trend of the last two rows. Only a flip between those
// two rows produces a signal; older flips are never revisited.
func Detect(rows []model.IndicatorRow) model.Signal {
	if len(rows) < 2 {
		return model.SignalNone
	}
	prev, cur := rows[len(rows)-2], rows[len(rows)-1]
	if !prev.Ready || !cur.Ready {
		return model.SignalNone
	}
	switch {
	case !prev.InUptrend && cur.InUptrend:
		return model.SignalBuy
	case prev.InUptrend && !cur.InUptrend:
		return model.SignalSell
	default:
		return model.SignalNone
	}
}

// Evaluate returns the signal together with the latest row for reporting.
func Evaluate(rows []model.IndicatorRow) *Evaluation {
	ev := &Evaluation{Signal: Detect(rows)}
	if len(rows) > 0 {
		ev.Latest = rows[len(rows)-1]
	}
	return ev
}
