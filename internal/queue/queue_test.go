package queue

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestInMemoryQueuePublishSubscribe(t *testing.T) {
	q := NewInMemoryQueue()
	var mu sync.Mutex
	var got []string

	err := q.Subscribe("jobs", func(body []byte) error {
		mu.Lock()
		got = append(got, string(body))
		mu.Unlock()
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := q.Publish("jobs", []byte("hello")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("handler never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestInMemoryQueueNoSubscribers(t *testing.T) {
	q := NewInMemoryQueue()
	if err := q.Publish("nobody", []byte("x")); err == nil {
		t.Error("expected error when publishing to a topic with no subscribers")
	}
}

func TestInMemoryQueueRetries(t *testing.T) {
	q := NewInMemoryQueue()
	var attempts int32

	q.Subscribe("flaky", func(body []byte) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err := q.Publish("flaky", []byte("x")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for atomic.LoadInt32(&attempts) < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected 3 attempts, got %d", atomic.LoadInt32(&attempts))
		case <-time.After(20 * time.Millisecond):
		}
	}
}
