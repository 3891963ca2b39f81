// Package notify shows the one-line outcome of a user action
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"
)

// Notifier reports the outcome of an operation to the user
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Console prints notifications to a terminal
type Console struct {
	out   io.Writer
	color bool
}

// NewConsole returns a console notifier. Colors are only used when color is set.
func NewConsole(out io.Writer, color bool) *Console {
	return &Console{out: out, color: color}
}

func (c *Console) Success(message string) {
	icon := "✓"
	if c.color {
		icon = promptui.IconGood
	}
	fmt.Fprintf(c.out, "%s %s\n", icon, message)
}

func (c *Console) Error(message string) {
	icon := "✗"
	if c.color {
		icon = promptui.IconBad
		message = promptui.Styler(promptui.FGRed)(message)
	}
	fmt.Fprintf(c.out, "%s %s\n", icon, message)
}

// Log records notifications as log events
type Log struct {
	logger zerolog.Logger
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Success(message string) {
	l.logger.Info().Str("notification", "success").Msg(message)
}

func (l *Log) Error(message string) {
	l.logger.Warn().Str("notification", "error").Msg(message)
}

// Notification is one recorded call
type Notification struct {
	Success bool
	Message string
}

// Recorder keeps every notification in memory
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Success(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Success: true, Message: message})
}

func (r *Recorder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Message: message})
}

// All returns the notifications in the order they were made
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Multi fans notifications out to several notifiers
type Multi []Notifier

func (m Multi) Success(message string) {
	for _, n := range m {
		n.Success(message)
	}
}

func (m Multi) Error(message string) {
	for _, n := range m {
		n.Error(message)
	}
}
