// Package pubsub fans session events out to streaming subscribers.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
)

// Topics published by a running session.
const (
	TopicLayout   = "layout"   // per-tick position frames
	TopicGraph    = "graph"    // structural snapshots
	TopicViewport = "viewport" // camera transform updates
)

// Topics lists every known topic.
var Topics = []string{TopicLayout, TopicGraph, TopicViewport}

// ErrClosed is returned by a closed publisher.
var ErrClosed = errors.New("publisher is closed")

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // TopicLayout, TopicGraph or TopicViewport
	Type    string          `json:"type"`    // e.g. "frame", "snapshot", "transform"
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Version number for ordering
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic
	// Context cancellation will close the subscription
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// KnownTopic reports whether topic is one a session publishes.
func KnownTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}
