// Package notice delivers short user-visible messages. Notify is fire and
// forget: it has no return value and delivery failures are only logged.
package notice

import (
	"sync"
)

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string)
}

// Func adapts a function to Notifier.
type Func func(message string)

// Notify implements Notifier.
func (f Func) Notify(message string) { f(message) }

// Discard drops every message.
var Discard Notifier = Func(func(string) {})

// Multi fans a message out to several notifiers in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(message)
		}
	}
}

// Recorder keeps every message it receives.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

// Messages returns the received messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

// Last returns the most recent message, or "" if there is none.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return ""
	}
	return r.messages[len(r.messages)-1]
}

// Len returns the number of received messages.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
