package simulation

import (
	"time"

	"github.com/google/uuid"
)

// Message is a packet animation travelling between two devices. Progress runs
// from 0 to 1; at 1 the message is delivered.
type Message struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Type      string  `json:"type"`
	Data      any     `json:"data,omitempty"`
	Timestamp int64   `json:"timestamp"`
	Progress  float64 `json:"progress"`
}

// Queue holds the messages in flight in send order
type Queue struct {
	messages []*Message
	newID    func() string
	now      func() time.Time
}

// NewQueue creates an empty message queue
func NewQueue() *Queue {
	return &Queue{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Send queues a message and returns its id
func (q *Queue) Send(from, to, msgType string, data any) string {
	msg := &Message{
		ID:        q.newID(),
		From:      from,
		To:        to,
		Type:      msgType,
		Data:      data,
		Timestamp: q.now().UnixMilli(),
	}
	q.messages = append(q.messages, msg)
	return msg.ID
}

// Update advances every message by delta scaled by speed, one unit of
// progress per second. Messages that reach the end are removed and returned
// in send order.
func (q *Queue) Update(delta time.Duration, speed float64) []Message {
	step := float64(delta.Milliseconds()) * speed * 0.001

	var delivered []Message
	kept := q.messages[:0]
	for _, msg := range q.messages {
		msg.Progress += step
		if msg.Progress >= 1 {
			delivered = append(delivered, *msg)
			continue
		}
		kept = append(kept, msg)
	}
	for i := len(kept); i < len(q.messages); i++ {
		q.messages[i] = nil
	}
	q.messages = kept

	return delivered
}

// InFlight returns copies of the undelivered messages
func (q *Queue) InFlight() []Message {
	out := make([]Message, 0, len(q.messages))
	for _, msg := range q.messages {
		out = append(out, *msg)
	}
	return out
}

// Len returns the number of undelivered messages
func (q *Queue) Len() int {
	return len(q.messages)
}

// Clear drops every message in flight
func (q *Queue) Clear() {
	q.messages = nil
}
