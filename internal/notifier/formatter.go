package notifier

import (
	"fmt"
	"strings"

	"RSIMonitor/internal/model"
)

// FormatAlert renders the alert for a notify decision.
func FormatAlert(symbol string, d model.AlertDecision) model.Message {
	rsi := d.RSI.String()
	return model.Message{
		Subject: fmt.Sprintf("%s RSI Alert: RSI is now %s", symbol, rsi),
		Body: fmt.Sprintf("The RSI for %s has dropped below %s. Current RSI: %s.",
			symbol, formatThreshold(d.Threshold), rsi),
	}
}

// formatThreshold prints 70 rather than 70.00, keeping fractions when set.
func formatThreshold(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatRSILine is the status line printed after the calculation.
func FormatRSILine(symbol string, rsi model.RSIValue) string {
	if !rsi.Available() {
		return fmt.Sprintf("RSI for %s could not be calculated.", symbol)
	}
	return fmt.Sprintf("Current RSI for %s: %s", symbol, rsi)
}

// FormatSendLine is the status line printed after a notification attempt.
func FormatSendLine(st model.SendStatus) string {
	switch {
	case !st.Attempted:
		return "No alert sent."
	case st.Sent:
		return fmt.Sprintf("Alert sent successfully via %s!", st.Channel)
	default:
		return fmt.Sprintf("Error sending alert via %s: %v", st.Channel, st.Err)
	}
}
