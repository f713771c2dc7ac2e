// Package notify is the user-facing message sink. Delivery is fire-and-forget:
// callers never wait on it and never depend on its outcome.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Kind classifies a notification.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	// KindCritical must stay visible until the user dismisses it.
	KindCritical Kind = "critical"
)

// Sticky reports whether notifications of this kind must not auto-dismiss.
func (k Kind) Sticky() bool { return k == KindCritical }

// Notifier receives user-facing messages.
type Notifier interface {
	Notify(message string, kind Kind)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(string, Kind) {}

// Log forwards notifications to a zerolog logger.
type Log struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (l Log) Notify(message string, kind Kind) {
	var ev *zerolog.Event
	switch kind {
	case KindWarning:
		ev = l.Logger.Warn()
	case KindError, KindCritical:
		ev = l.Logger.Error()
	default:
		ev = l.Logger.Info()
	}
	ev.Str("kind", string(kind)).Bool("sticky", kind.Sticky()).Msg(message)
}

// Writer prints notifications as lines, e.g. to a terminal.
type Writer struct {
	mu sync.Mutex
	W  io.Writer
}

// Notify implements Notifier.
func (w *Writer) Notify(message string, kind Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	prefix := map[Kind]string{
		KindSuccess:  "✓",
		KindWarning:  "!",
		KindError:    "✗",
		KindCritical: "✗✗",
	}[kind]
	if prefix == "" {
		prefix = "·"
	}
	fmt.Fprintf(w.W, "%s %s\n", prefix, message)
}

// Message is one recorded notification.
type Message struct {
	Text string
	Kind Kind
}

// Recorder keeps every notification in memory.
//
// Thread-safety: Recorder is safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: message, Kind: kind})
}

// Messages returns a copy of the recorded notifications.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Fanout delivers to every notifier in order.
type Fanout []Notifier

// Notify implements Notifier.
func (f Fanout) Notify(message string, kind Kind) {
	for _, n := range f {
		n.Notify(message, kind)
	}
}
