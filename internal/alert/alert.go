// Package alert evaluates analysis results against notification rules and
// delivers the resulting alerts to external channels.
package alert

import (
	"context"
	"log"
)

// Level represents the severity of an alert.
type Level string

const (
	LevelInfo     Level = "INFO"
	LevelWarning  Level = "WARNING"
	LevelCritical Level = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   Level  `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
	// Name identifies the channel in logs and metrics.
	Name() string
}

// LogNotifier writes alerts to the process log. It is the default channel
// and never fails.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[INFO] alert [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

func (n *LogNotifier) Name() string { return "log" }
