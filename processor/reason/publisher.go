package reason

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/c360/semreason/errors"
	"github.com/c360/semreason/message"
)

// publishResponse publishes a reasoning response on the response port.
func (p *Processor) publishResponse(ctx context.Context, response *message.ReasonResponsePayload) error {
	subject := p.config.outputSubject("responses")
	if subject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "ReasonProcessor", "publishResponse", "resolve response subject")
	}

	if err := response.Validate(); err != nil {
		return errors.WrapInvalid(err, "ReasonProcessor", "publishResponse", "validate response")
	}

	msg := message.NewBaseMessage(response.Schema(), response, p.metadata.Name)
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "ReasonProcessor", "publishResponse", "marshal response")
	}

	if err := p.natsClient.Publish(ctx, subject, data); err != nil {
		return errors.WrapTransient(err, "ReasonProcessor", "publishResponse", fmt.Sprintf("publish to %s", subject))
	}

	if p.metrics != nil {
		p.metrics.publishedTotal.WithLabelValues(subject, "response").Inc()
	}
	return nil
}

// publishErrorResponse answers a failed or rejected request on the response
// port so callers are not left waiting on the correlation ID.
func (p *Processor) publishErrorResponse(ctx context.Context, requestID, errMsg string) {
	if requestID == "" {
		return
	}

	response := &message.ReasonResponsePayload{
		RequestID: requestID,
		Error:     errMsg,
	}
	if err := p.publishResponse(ctx, response); err != nil {
		p.logger.Warn("Failed to publish error response", "request_id", requestID, "error", err)
	}
}

// publishInferred fans inferred triples out on the inferred port for graph
// storage. Nothing is published when the run inferred nothing or the port
// is not configured.
func (p *Processor) publishInferred(ctx context.Context, job runJob, inferred []message.Triple) error {
	if len(inferred) == 0 {
		return nil
	}

	subject := p.config.outputSubject("inferred")
	if subject == "" {
		return nil
	}

	batch := message.NewTripleBatch(inferred, p.metadata.Name)
	batch.Context = job.request.RequestID

	msg := message.NewBaseMessage(batch.Schema(), batch, p.metadata.Name)
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.Wrap(err, "ReasonProcessor", "publishInferred", "marshal inferred batch")
	}

	if err := p.natsClient.Publish(ctx, subject, data); err != nil {
		return errors.WrapTransient(err, "ReasonProcessor", "publishInferred", fmt.Sprintf("publish to %s", subject))
	}

	if p.metrics != nil {
		p.metrics.publishedTotal.WithLabelValues(subject, "inferred").Inc()
	}
	return nil
}
