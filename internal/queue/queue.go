package queue

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Queue is the transport to out-of-band collaborators. Publish is
// fire-and-forget: a nil return means the broker accepted the message, not
// that anyone processed it.
type Queue interface {
	Publish(topic string, body []byte) error
	Subscribe(topic string, handler func(body []byte) error) error
}

const maxRetries = 3

// InMemoryQueue is a broker-free Queue for tests and single-process runs.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(body []byte) error
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(body []byte) error),
	}
}

func (q *InMemoryQueue) Publish(topic string, body []byte) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}
	for _, handler := range handlers {
		go processWithRetry(handler, body)
	}
	return nil
}

func (q *InMemoryQueue) Subscribe(topic string, handler func(body []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

func processWithRetry(handler func(body []byte) error, body []byte) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := handler(body)
		if err == nil {
			return
		}
		log.Printf("job failed (attempt %d/%d): %v\n", attempt+1, maxRetries, err)
		if attempt == maxRetries {
			log.Printf("job permanently failed after %d attempts\n", maxRetries)
			return
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
	}
}
