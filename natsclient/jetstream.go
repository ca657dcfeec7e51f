package natsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/semreason/errors"
)

// JetStream returns the JetStream context for the current connection
func (c *Client) JetStream() (jetstream.JetStream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.js == nil {
		return nil, errors.WrapTransient(
			fmt.Errorf("JetStream not initialized"),
			"Client", "JetStream", "get JetStream context")
	}

	return c.js, nil
}

// jsReady gates JetStream operations behind the circuit breaker and the
// connection state. Early rejections do not count as breaker failures; a
// missing JetStream context on a live connection does.
func (c *Client) jsReady() (jetstream.JetStream, error) {
	if c.Status() == StatusCircuitOpen {
		return nil, ErrCircuitOpen
	}
	if c.Status() != StatusConnected {
		return nil, ErrNotConnected
	}

	js, err := c.JetStream()
	if err != nil {
		c.recordFailure()
		return nil, err
	}
	return js, nil
}

// CreateStream creates a JetStream stream and registers it for metrics
func (c *Client) CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	js, err := c.jsReady()
	if err != nil {
		return nil, err
	}

	stream, err := js.CreateStream(ctx, cfg)
	if err != nil {
		c.recordFailure()
		c.jsMetrics.recordError("create_stream")
		return nil, err
	}

	c.resetCircuit()
	c.jsMetrics.trackStream(cfg.Name, stream)

	return stream, nil
}

// GetStream looks up an existing JetStream stream by name
func (c *Client) GetStream(ctx context.Context, name string) (jetstream.Stream, error) {
	js, err := c.jsReady()
	if err != nil {
		return nil, err
	}

	stream, err := js.Stream(ctx, name)
	if err != nil {
		c.recordFailure()
		c.jsMetrics.recordError("get_stream")
		return nil, err
	}

	c.resetCircuit()
	c.jsMetrics.trackStream(name, stream)

	return stream, nil
}

// PublishToStream publishes a message with JetStream acknowledgement
func (c *Client) PublishToStream(ctx context.Context, subject string, data []byte) error {
	js, err := c.jsReady()
	if err != nil {
		return err
	}

	if _, err := js.Publish(ctx, subject, data); err != nil {
		c.recordFailure()
		return err
	}

	c.resetCircuit()
	return nil
}

// ConsumeStream creates a consumer on the stream and starts delivering
// matching messages to the handler. A second call with the same stream
// and subject replaces the previous consumer.
func (c *Client) ConsumeStream(ctx context.Context, streamName, subject string, handler func([]byte)) error {
	js, err := c.jsReady()
	if err != nil {
		return err
	}

	// No new consumers once shutdown has started
	if c.closed.Load() {
		return errors.WrapInvalid(
			fmt.Errorf("client is closed"),
			"Client", "ConsumeStream", "check client state")
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
	})
	if err != nil {
		c.recordFailure()
		c.jsMetrics.recordError("create_consumer")
		return err
	}

	if info, err := consumer.Info(ctx); err == nil {
		c.jsMetrics.trackConsumer(streamName, info.Name, consumer)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		handler(msg.Data())
		msg.Ack()
	})
	if err != nil {
		c.recordFailure()
		return err
	}

	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()

	// Close may have raced us between the earlier check and taking the
	// lock; if so, the consumer we just started must not outlive it.
	if c.closed.Load() {
		consumeCtx.Stop()
		return errors.WrapInvalid(
			fmt.Errorf("client is closing"),
			"Client", "ConsumeStream", "check client state during consumer registration")
	}

	if c.consumers == nil {
		c.consumers = make(map[string]jetstream.ConsumeContext)
	}
	key := streamName + ":" + subject
	if prev, ok := c.consumers[key]; ok {
		prev.Stop()
		c.logger.Debugf("Replaced existing consumer for %s", key)
	}
	c.consumers[key] = consumeCtx

	c.resetCircuit()
	return nil
}

// CreateKeyValueBucket returns the named KV bucket, creating it if it
// does not exist. Concurrent creators race safely: the loser falls back
// to the bucket the winner created.
func (c *Client) CreateKeyValueBucket(ctx context.Context, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	js, err := c.jsReady()
	if err != nil {
		return nil, err
	}

	if bucket, err := js.KeyValue(ctx, cfg.Bucket); err == nil {
		c.logger.Printf("Using existing KV bucket: %s", cfg.Bucket)
		c.resetCircuit()
		return bucket, nil
	}

	bucket, err := js.CreateKeyValue(ctx, cfg)
	if err == nil {
		c.logger.Printf("Created new KV bucket: %s", cfg.Bucket)
		c.resetCircuit()
		return bucket, nil
	}

	if isAlreadyExistsError(err) {
		// Someone else created it between our lookup and create
		bucket, err = js.KeyValue(ctx, cfg.Bucket)
		if err != nil {
			c.recordFailure()
			return nil, errors.Wrap(err, "Client", "CreateKeyValueBucket",
				fmt.Sprintf("access existing bucket %s", cfg.Bucket))
		}
		c.logger.Printf("KV bucket %s created concurrently, using existing bucket", cfg.Bucket)
		c.resetCircuit()
		return bucket, nil
	}

	c.recordFailure()
	return nil, err
}

// GetKeyValueBucket returns an existing KV bucket by name
func (c *Client) GetKeyValueBucket(ctx context.Context, name string) (jetstream.KeyValue, error) {
	js, err := c.jsReady()
	if err != nil {
		return nil, err
	}

	bucket, err := js.KeyValue(ctx, name)
	if err != nil {
		c.recordFailure()
		return nil, err
	}

	c.resetCircuit()
	return bucket, nil
}

// DeleteKeyValueBucket deletes a KV bucket and its contents
func (c *Client) DeleteKeyValueBucket(ctx context.Context, name string) error {
	js, err := c.jsReady()
	if err != nil {
		return err
	}

	if err := js.DeleteKeyValue(ctx, name); err != nil {
		c.recordFailure()
		return err
	}

	c.resetCircuit()
	return nil
}

// ListKeyValueBuckets lists the names of all KV buckets on the server
func (c *Client) ListKeyValueBuckets(ctx context.Context) ([]string, error) {
	js, err := c.jsReady()
	if err != nil {
		return nil, err
	}

	// KV buckets are JetStream streams named with a KV_ prefix
	names := []string{}
	streams := js.ListStreams(ctx)
	for info := range streams.Info() {
		if info == nil {
			continue
		}
		if bucket, ok := strings.CutPrefix(info.Config.Name, "KV_"); ok && bucket != "" {
			names = append(names, bucket)
		}
	}
	if err := streams.Err(); err != nil {
		c.recordFailure()
		return nil, err
	}

	c.resetCircuit()
	return names, nil
}

// isAlreadyExistsError matches the NATS error shapes that mean a bucket
// or its backing stream already exists.
func isAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "bucket name already in use") ||
		strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "stream name already in use")
}
