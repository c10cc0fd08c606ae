package model

import "time"

// DecisionAction is the outcome of the alert policy.
type DecisionAction string

const (
	ActionNotify   DecisionAction = "NOTIFY"
	ActionSuppress DecisionAction = "SUPPRESS"
)

// AlertDecision pairs the policy outcome with the RSI that produced it.
type AlertDecision struct {
	Action    DecisionAction
	RSI       RSIValue
	Threshold float64
	Reason    string
}

// ShouldNotify reports whether an alert must be sent.
func (d AlertDecision) ShouldNotify() bool { return d.Action == ActionNotify }

// Message is a rendered alert.
type Message struct {
	Subject string
	Body    string
}

// SendStatus is the result of a notification attempt.
type SendStatus struct {
	Attempted bool
	Sent      bool
	Channel   string
	Err       error
}

// RunReport summarises one monitoring pass.
type RunReport struct {
	Symbol       string
	Points       int
	RSI          RSIValue
	Decision     AlertDecision
	Notification SendStatus
	StartedAt    time.Time
	Duration     time.Duration
}
