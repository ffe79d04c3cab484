package service

import (
	"context"
	"sync"

	"github.com/Skotchmaster/food_delivery/internal/notify"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (r *recorder) PublishEvent(_ context.Context, topic, key string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Topic: topic, Key: key, Event: event.(map[string]any)})
	return r.err
}

func (r *recorder) Close() error { return nil }

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Event["type"].(string)
	}
	return out
}

type notifierStub struct {
	mu      sync.Mutex
	notices []notify.PaidNotice
	err     error
}

func (n *notifierStub) OrderPaid(_ context.Context, p notify.PaidNotice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, p)
	return n.err
}
