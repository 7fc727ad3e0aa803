package logging

import (
	"bytes"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/go-logfmt/logfmt"
	"github.com/leg100/rtable/internal/pubsub"
)

// Message is the event payload for a log message
type Message struct {
	Time       time.Time
	Level      string
	Message    string `json:"msg"`
	Attributes []Attr

	// Serial uniquely identifies the message (within the scope of the logger it
	// was emitted from). The higher the Serial number the newer the message.
	Serial uint
}

type Attr struct {
	Key   string
	Value string
}

// writer is a slog TextHandler writer that both keeps the log records in
// memory and emits them as events.
type writer struct {
	messages []Message
	mu       sync.Mutex

	broker *pubsub.Broker[Message]
	serial uint
}

func (b *writer) Write(p []byte) (int, error) {
	msgs, err := b.decode(p)
	if err != nil {
		return 0, err
	}
	// Publish outside of the lock: the broker may itself log.
	for _, msg := range msgs {
		b.broker.Publish(msg)
	}
	return len(p), nil
}

func (b *writer) decode(p []byte) ([]Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs := make([]Message, 0, 1)
	d := logfmt.NewDecoder(bytes.NewReader(p))
	for d.ScanRecord() {
		msg := Message{Serial: b.serial}
		for d.ScanKeyval() {
			switch string(d.Key()) {
			case "time":
				parsed, err := time.Parse(time.RFC3339, string(d.Value()))
				if err != nil {
					return nil, fmt.Errorf("parsing time: %w", err)
				}
				msg.Time = parsed
			case "level":
				msg.Level = string(d.Value())
			case "msg":
				msg.Message = string(d.Value())
			default:
				msg.Attributes = append(msg.Attributes, Attr{
					Key:   string(d.Key()),
					Value: string(d.Value()),
				})
			}
		}
		msgs = append(msgs, msg)
		b.serial++
	}
	if d.Err() != nil {
		return nil, d.Err()
	}
	b.messages = append(b.messages, msgs...)
	return msgs, nil
}

func (b *writer) list() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	return slices.Clone(b.messages)
}

// String renders the message on a single line.
func (m Message) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s", m.Level, m.Message)
	for _, attr := range m.Attributes {
		fmt.Fprintf(&buf, " %s=%s", attr.Key, attr.Value)
	}
	return buf.String()
}
