package main

import (
	"context"
	"math/rand"
	"sync"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

const (
	maxBackoff   = 10 * time.Second
	jitterWindow = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type publisherFactory func(topic string) publisher

// publisher sends ordered messages. ResumePublish unblocks an ordering key
// after a failed send.
type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
	ResumePublish(orderingKey string)
}

type publishResult interface {
	Get(context.Context) (string, error)
}

// topicPublishers keeps one ordered publisher per topic for the process
// lifetime.
type topicPublishers struct {
	client pubSubClient
	mu     sync.Mutex
	byName map[string]*gcpPublisher
}

func newTopicPublishers(client pubSubClient) *topicPublishers {
	return &topicPublishers{client: client, byName: make(map[string]*gcpPublisher)}
}

func (t *topicPublishers) get(topic string) publisher {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pub, ok := t.byName[topic]; ok {
		return pub
	}
	handle := t.client.Publisher(topic)
	if handle == nil {
		return nil
	}
	handle.EnableMessageOrdering = true
	pub := &gcpPublisher{handle: handle}
	t.byName[topic] = pub
	return pub
}

func (t *topicPublishers) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for topic, pub := range t.byName {
		pub.handle.Stop()
		delete(t.byName, topic)
	}
}

type gcpPublisher struct {
	handle *gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	res := p.handle.Publish(ctx, msg)
	if res == nil {
		return nil
	}
	return res
}

func (p *gcpPublisher) ResumePublish(key string) {
	p.handle.ResumePublish(key)
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	if next := current * 2; next < max {
		return next
	}
	return max
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
