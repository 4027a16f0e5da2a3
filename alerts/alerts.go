// Package alerts delivers user-visible notifications raised by workflows.
package alerts

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Messages shown to the user.
const (
	MsgUserNotAuthenticated  = "User not authenticated"
	MsgProfileAlreadyExists  = "Profile already exists"
	MsgProfileCreationFailed = "Error creating profile"
	MsgPaymentSuccessful     = "Payment successful"
	MsgPaymentFailed         = "Payment failed"
	MsgPaymentError          = "Payment error"
)

type Alert struct {
	Level   Level
	Message string
}

// Notifier surfaces an alert to the user.
type Notifier interface {
	Notify(alert Alert)
}

// LogNotifier writes alerts to the global zerolog logger.
type LogNotifier struct{}

func (LogNotifier) Notify(alert Alert) {
	var event *zerolog.Event
	if alert.Level == LevelError {
		event = log.Error()
	} else {
		event = log.Info()
	}
	event.Str("alert", string(alert.Level)).Msg(alert.Message)
}

// Recorder keeps alerts in memory. Used by the CLI to print them and by tests.
type Recorder struct {
	alerts []Alert
	lock   sync.Mutex
}

func (r *Recorder) Notify(alert Alert) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.alerts = append(r.alerts, alert)
}

func (r *Recorder) Alerts() []Alert {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Alert(nil), r.alerts...)
}

// Drain returns and forgets the recorded alerts.
func (r *Recorder) Drain() []Alert {
	r.lock.Lock()
	defer r.lock.Unlock()
	alerts := r.alerts
	r.alerts = nil
	return alerts
}

func Info(message string) Alert {
	return Alert{Level: LevelInfo, Message: message}
}

func Error(message string) Alert {
	return Alert{Level: LevelError, Message: message}
}
