// Package testutil provides an in-memory NATS stand-in, canned wire
// fixtures, and error helpers shared by tests across the module.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"
)

// MessageHandler is the callback signature the mock delivers messages to.
type MessageHandler func(ctx context.Context, data []byte)

// MockNATSClient is an in-memory pub/sub fake matching the Publish and
// Subscribe signatures of the real client. Handlers run synchronously
// inside Publish, so a test can publish and immediately inspect results.
type MockNATSClient struct {
	mu       sync.RWMutex
	closed   bool
	log      map[string][][]byte
	handlers map[string][]MessageHandler
}

// NewMockNATSClient returns an empty mock client.
func NewMockNATSClient() *MockNATSClient {
	return &MockNATSClient{
		log:      make(map[string][][]byte),
		handlers: make(map[string][]MessageHandler),
	}
}

// Publish records data under subject and delivers it to every subscribed
// handler before returning.
func (c *MockNATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("mock client is closed")
	}
	c.log[subject] = append(c.log[subject], data)
	handlers := slices.Clone(c.handlers[subject])
	c.mu.Unlock()

	// Handlers run outside the lock; they may publish in turn.
	for _, handler := range handlers {
		msgCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		handler(msgCtx, data)
		cancel()
	}
	return nil
}

// Subscribe registers handler for subject. Multiple handlers per subject
// are allowed and invoked in registration order.
func (c *MockNATSClient) Subscribe(ctx context.Context, subject string, handler func(context.Context, []byte)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("mock client is closed")
	}
	c.handlers[subject] = append(c.handlers[subject], handler)
	return nil
}

// GetMessages returns a copy of everything published to subject.
func (c *MockNATSClient) GetMessages(subject string) [][]byte {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.log[subject]) == 0 {
		return nil
	}
	return append([][]byte(nil), c.log[subject]...)
}

// GetMessageCount returns how many messages were published to subject.
func (c *MockNATSClient) GetMessageCount(subject string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.log[subject])
}

// Clear discards the recorded messages for subject.
func (c *MockNATSClient) Clear(subject string) {
	c.mu.Lock()
	delete(c.log, subject)
	c.mu.Unlock()
}

// Close marks the client closed; further Publish or Subscribe calls fail.
func (c *MockNATSClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// WaitForMessageCount polls until subject has at least count messages or
// the timeout expires, failing the test on timeout.
func WaitForMessageCount(t *testing.T, client *MockNATSClient, subject string, count int, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if client.GetMessageCount(subject) >= count {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %d messages on %s (got %d)",
		count, subject, client.GetMessageCount(subject))
}

// AssertMessageReceived fails the test unless subject has at least one
// recorded message.
func AssertMessageReceived(t *testing.T, client *MockNATSClient, subject string) {
	t.Helper()
	if client.GetMessageCount(subject) == 0 {
		t.Fatalf("expected a message on %s, got none", subject)
	}
}

// AssertNoMessages fails the test if anything was published to subject.
func AssertNoMessages(t *testing.T, client *MockNATSClient, subject string) {
	t.Helper()
	if n := client.GetMessageCount(subject); n > 0 {
		t.Fatalf("expected no messages on %s, got %d", subject, n)
	}
}

// MockError is a coded error for exercising errors.As paths.
type MockError struct {
	Message string
	Code    string
}

func (e *MockError) Error() string { return e.Message }

// NewMockError returns a MockError with the given message and code.
func NewMockError(message, code string) error {
	return &MockError{Message: message, Code: code}
}

// Sentinel errors for exercising errors.Is paths.
var (
	ErrMockFailed  = errors.New("mock operation failed")
	ErrMockTimeout = errors.New("mock operation timed out")
)
