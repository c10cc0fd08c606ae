package strategy

import (
	"fmt"

	"RSIMonitor/internal/model"
)

// DefaultThreshold is the level the RSI has to fall under to raise an alert.
const DefaultThreshold = 70.0

// Decider maps an RSI reading to a notify/suppress decision.
type Decider struct {
	Threshold float64
}

// NewDecider creates a Decider for the given threshold.
func NewDecider(threshold float64) *Decider {
	return &Decider{Threshold: threshold}
}

// Decide returns notify only for an available RSI strictly below the threshold.
func (d *Decider) Decide(rsi model.RSIValue) model.AlertDecision {
	decision := model.AlertDecision{
		Action:    model.ActionSuppress,
		RSI:       rsi,
		Threshold: d.Threshold,
	}

	v, ok := rsi.Value()
	switch {
	case !ok:
		decision.Reason = "rsi unavailable"
	case v < d.Threshold:
		decision.Action = model.ActionNotify
		decision.Reason = fmt.Sprintf("rsi %.2f < %.2f", v, d.Threshold)
	default:
		decision.Reason = fmt.Sprintf("rsi %.2f >= %.2f", v, d.Threshold)
	}
	return decision
}
