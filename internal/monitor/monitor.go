package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"RSIMonitor/internal/calculator"
	"RSIMonitor/internal/collector"
	"RSIMonitor/internal/model"
	"RSIMonitor/internal/notifier"
	"RSIMonitor/internal/strategy"

	"github.com/rs/zerolog"
)

// Monitor runs one fetch → compute → decide → notify pass.
type Monitor struct {
	Collector *collector.Collector
	Period    int
	Decider   *strategy.Decider
	Notifier  notifier.Notifier
	Recipient string
	Log       zerolog.Logger
	// Out receives the human-readable status lines; nil discards them.
	Out io.Writer
}

// New creates a Monitor. A nil out discards the status lines.
func New(col *collector.Collector, period int, d *strategy.Decider, n notifier.Notifier, recipient string, log zerolog.Logger, out io.Writer) *Monitor {
	if out == nil {
		out = io.Discard
	}
	return &Monitor{
		Collector: col,
		Period:    period,
		Decider:   d,
		Notifier:  n,
		Recipient: recipient,
		Log:       log,
		Out:       out,
	}
}

// Run executes a single pass. Every failure is converted into the report and
// logged; Run itself never fails.
func (m *Monitor) Run(ctx context.Context) model.RunReport {
	start := time.Now()
	symbol := m.Collector.Symbol
	report := model.RunReport{Symbol: symbol, StartedAt: start}
	log := m.Log.With().Str("symbol", symbol).Logger()

	report.RSI = m.computeRSI(ctx, log, &report)
	m.printf("%s\n", notifier.FormatRSILine(symbol, report.RSI))

	report.Decision = m.Decider.Decide(report.RSI)
	log.Info().
		Str("action", string(report.Decision.Action)).
		Str("reason", report.Decision.Reason).
		Msg("alert decision")

	if report.Decision.ShouldNotify() {
		report.Notification = m.trySend(ctx, log, notifier.FormatAlert(symbol, report.Decision))
		m.printf("%s\n", notifier.FormatSendLine(report.Notification))
	}

	report.Duration = time.Since(start)
	return report
}

func (m *Monitor) computeRSI(ctx context.Context, log zerolog.Logger, report *model.RunReport) model.RSIValue {
	var series model.PriceSeries
	err := guard(func() error {
		var err error
		series, err = m.Collector.Collect(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, collector.ErrDataUnavailable) {
			err = fmt.Errorf("%w: %w", collector.ErrDataUnavailable, err)
		}
		log.Error().Err(err).Msg("collect price series")
		return model.UnavailableRSI(err)
	}
	report.Points = series.Len()

	var rsi model.RSIValue
	if err := guard(func() error {
		rsi = calculator.CalculateRSI(series, m.Period)
		return nil
	}); err != nil {
		rsi = model.UnavailableRSI(err)
	}

	if v, ok := rsi.Value(); ok {
		ev := log.Info().Float64("rsi", v).Int("period", m.Period).Int("points", series.Len())
		if last, ok := series.Last(); ok {
			ev = ev.Time("last_bar", last.Time).Float64("last_close", last.Close)
		}
		ev.Msg("rsi computed")
	} else {
		log.Warn().Err(rsi.Reason()).Int("points", series.Len()).Msg("rsi unavailable")
	}
	return rsi
}

func (m *Monitor) trySend(ctx context.Context, log zerolog.Logger, msg model.Message) model.SendStatus {
	st := model.SendStatus{Attempted: true, Channel: m.Notifier.Name()}
	err := guard(func() error {
		return m.Notifier.Send(ctx, m.Recipient, msg)
	})
	if err != nil {
		if !errors.Is(err, notifier.ErrNotificationFailed) {
			err = fmt.Errorf("%w: %w", notifier.ErrNotificationFailed, err)
		}
		st.Err = err
		log.Warn().Err(err).Str("channel", st.Channel).Msg("send notification")
		return st
	}
	st.Sent = true
	log.Info().Str("channel", st.Channel).Str("subject", msg.Subject).Msg("alert sent")
	return st
}

func (m *Monitor) printf(format string, args ...any) {
	if m.Out != nil {
		fmt.Fprintf(m.Out, format, args...)
	}
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
