package roll

import (
	"time"
)

type (
	// Alert is a message shown to the user on the status line for a while.
	// Alerts with the same non-empty Name replace each other instead of
	// piling up.
	Alert struct {
		Name     string
		Priority AlertPriority
		Message  string
		Duration time.Duration
		FadeLeft time.Duration
	}

	AlertPriority int

	// Alerts is the view of the model that manages the alert queue.
	Alerts Model
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

// Alerts returns the alert queue of the model.
func (m *Model) Alerts() *Alerts { return (*Alerts)(m) }

// Add queues an anonymous alert.
func (m *Alerts) Add(message string, priority AlertPriority) {
	m.AddAlert(Alert{Priority: priority, Message: message, Duration: defaultAlertDuration})
}

// AddNamed queues an alert that replaces any earlier alert with the same
// name.
func (m *Alerts) AddNamed(name, message string, priority AlertPriority) {
	m.AddAlert(Alert{Name: name, Priority: priority, Message: message, Duration: defaultAlertDuration})
}

// AddAlert queues a.
func (m *Alerts) AddAlert(a Alert) {
	a.FadeLeft = a.Duration
	if a.Name != "" {
		for i := range m.alerts {
			if m.alerts[i].Name == a.Name {
				m.alerts[i] = a
				return
			}
		}
	}
	m.alerts = append(m.alerts, a)
}

// Update ages the alerts by d and drops the expired ones.
func (m *Alerts) Update(d time.Duration) {
	n := 0
	for _, a := range m.alerts {
		a.FadeLeft -= d
		if a.FadeLeft > 0 {
			m.alerts[n] = a
			n++
		}
	}
	m.alerts = m.alerts[:n]
}

// Iterate yields the queued alerts, oldest first.
func (m *Alerts) Iterate(yield func(int, Alert) bool) {
	for i, a := range m.alerts {
		if !yield(i, a) {
			return
		}
	}
}

// Top returns the most important of the queued alerts, preferring the most
// recent one among equals.
func (m *Alerts) Top() (Alert, bool) {
	var ret Alert
	found := false
	for _, a := range m.alerts {
		if !found || a.Priority >= ret.Priority {
			ret = a
			found = true
		}
	}
	return ret, found
}

// Len returns the number of queued alerts.
func (m *Alerts) Len() int { return len(m.alerts) }

func (p AlertPriority) String() string {
	switch p {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}
