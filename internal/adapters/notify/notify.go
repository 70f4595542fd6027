// Package notify publishes call log lifecycle notifications
package notify

import "context"

// TopicCDRCreated carries one JSON payload per created call log
const TopicCDRCreated = "callog/cdr/created"

// Publisher is the outbound notification seam
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Close() error
}
