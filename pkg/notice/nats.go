package notice

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultSubject is the subject notices are published on.
const DefaultSubject = "memocard.notice"

// Message is the JSON payload published for each notice.
type Message struct {
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// NATS publishes notices to a NATS subject.
type NATS struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
	now     func() time.Time
}

// NewNATS connects to url with automatic reconnection.
func NewNATS(url, subject string, logger *slog.Logger) (*NATS, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	nc, err := nats.Connect(url,
		nats.Name("memocard"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &NATS{conn: nc, subject: subject, logger: logger, now: time.Now}, nil
}

// Notify implements Notifier.
func (n *NATS) Notify(message string) {
	data, err := json.Marshal(Message{Message: message, Time: n.now().UTC()})
	if err != nil {
		n.logger.Warn("marshaling notice", "err", err)
		return
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		n.logger.Warn("publishing notice", "subject", n.subject, "err", err)
	}
}

// Flush waits until published notices reach the server.
func (n *NATS) Flush() error {
	return n.conn.Flush()
}

// Close drains pending notices and closes the connection.
func (n *NATS) Close() error {
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
		return err
	}
	return nil
}
