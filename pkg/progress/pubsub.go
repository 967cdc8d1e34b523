package progress

import (
	"context"
	"encoding/json"

	"cloud.google.com/go/pubsub"
	"github.com/spawn-mcp/deep-research/pkg/schemas"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// PubSubReporter publishes step events to a Pub/Sub topic so a UI layer
// can stream session progress. Publishes are fire-and-forget.
type PubSubReporter struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubReporter creates a reporter bound to topicID, creating the
// topic when it does not exist.
func NewPubSubReporter(ctx context.Context, projectID, topicID string, logger *zap.Logger, opts ...option.ClientOption) (*PubSubReporter, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}

	topic := client.Topic(topicID)
	exists, err := topic.Exists(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	if !exists {
		topic, err = client.CreateTopic(ctx, topicID)
		if err != nil {
			client.Close()
			return nil, err
		}
	}

	return &PubSubReporter{client: client, topic: topic, logger: logger}, nil
}

func (r *PubSubReporter) Emit(step schemas.ResearchStep) {
	data, err := json.Marshal(step)
	if err != nil {
		r.logger.Warn("failed to marshal step event", zap.Error(err))
		return
	}
	// Result is intentionally not awaited; progress must never stall
	// the pipeline.
	r.topic.Publish(context.Background(), &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"step_id": step.ID, "status": string(step.Status)},
	})
}

// Close flushes pending publishes and releases the client.
func (r *PubSubReporter) Close() error {
	r.topic.Stop()
	return r.client.Close()
}
