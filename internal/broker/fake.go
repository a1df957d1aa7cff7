package broker

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeChannel is an in-process stand-in for an AMQP queue, used by unit
// tests that exercise ack/nack/redelivery/prefetch semantics without a live
// broker (no example repo in the retrieval pack tests RabbitMQ against a
// real server either; this mirrors their in-memory fake pattern).
//
// FakeJobQueue (JobPublisher+JobConsumer) and FakeResultQueue
// (ResultPublisher+ResultConsumer) wrap it via the shared Delivery
// contract: publishing appends raw bytes, Consume replays them one at a
// time, and redelivery on Nack(requeue=true) is explicit so idempotence
// tests can simulate duplicate delivery.
type FakeChannel struct {
	mu       sync.Mutex
	messages [][]byte
	acked    int
	nacked   int
	closed   bool
}

func NewFakeChannel() *FakeChannel {
	return &FakeChannel{}
}

func (f *FakeChannel) publish(body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(body))
	copy(cp, body)
	f.messages = append(f.messages, cp)
	return nil
}

// Requeue puts a message back at the head of the queue, simulating
// Nack(requeue=true) / broker redelivery.
func (f *FakeChannel) Requeue(body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append([][]byte{body}, f.messages...)
}

// Drain returns and clears every currently-queued message body, letting
// tests assert on what was published without consuming through Delivery.
func (f *FakeChannel) Drain() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.messages
	f.messages = nil
	return out
}

func (f *FakeChannel) AckedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acked
}

func (f *FakeChannel) NackedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nacked
}

// Consume drains every currently-queued message into a buffered channel.
// It does not block waiting for future publishes: tests call Publish then
// Consume, getting a one-shot drain of whatever is queued right now,
// rather than a long-lived subscription.
func (f *FakeChannel) Consume(ctx context.Context) (<-chan Delivery, error) {
	f.mu.Lock()
	pending := f.messages
	f.messages = nil
	f.mu.Unlock()

	out := make(chan Delivery, len(pending))
	for _, body := range pending {
		b := body
		out <- Delivery{
			Body: b,
			Ack: func() error {
				f.mu.Lock()
				f.acked++
				f.mu.Unlock()
				return nil
			},
			Nack: func(requeue bool) error {
				f.mu.Lock()
				f.nacked++
				f.mu.Unlock()
				if requeue {
					f.Requeue(b)
				}
				return nil
			},
		}
	}
	close(out)
	return out, nil
}

func (f *FakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *FakeChannel) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// FakeJobQueue wires a FakeChannel as both ends of the validation_queue.
type FakeJobQueue struct{ ch *FakeChannel }

func NewFakeJobQueue() *FakeJobQueue { return &FakeJobQueue{ch: NewFakeChannel()} }

func (q *FakeJobQueue) PublishJob(ctx context.Context, job ValidationJob) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.ch.publish(body)
}

func (q *FakeJobQueue) Consume(ctx context.Context) (<-chan Delivery, error) {
	return q.ch.Consume(ctx)
}

func (q *FakeJobQueue) Close() error { return q.ch.Close() }

func (q *FakeJobQueue) Channel() *FakeChannel { return q.ch }

// FakeResultQueue wires a FakeChannel as both ends of the result_queue.
type FakeResultQueue struct{ ch *FakeChannel }

func NewFakeResultQueue() *FakeResultQueue { return &FakeResultQueue{ch: NewFakeChannel()} }

func (q *FakeResultQueue) PublishResult(ctx context.Context, result ValidationResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return q.ch.publish(body)
}

func (q *FakeResultQueue) Consume(ctx context.Context) (<-chan Delivery, error) {
	return q.ch.Consume(ctx)
}

func (q *FakeResultQueue) Close() error { return q.ch.Close() }

func (q *FakeResultQueue) Channel() *FakeChannel { return q.ch }
