package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"caseledger/internal/audit"
)

// Kafka publishes audit events to a Kafka topic for external monitoring and
// indexing consumers. It implements audit.Sink.
type Kafka struct {
	client *kgo.Client
	topic  string
}

func NewKafka(brokers []string, topic string) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Kafka{client: client, topic: topic}, nil
}

// payload is the JSON structure published to Kafka. Field names are part of
// the consumer contract; change them only with the downstream indexers.
type payload struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	Action      string `json:"action"`
	Principal   string `json:"principal"`
	CaseID      uint64 `json:"case_id,omitempty"`
	Owner       string `json:"owner,omitempty"`
	Org         string `json:"org,omitempty"`
	EvidenceRef string `json:"evidence_ref,omitempty"`
	OldStatus   string `json:"old_status,omitempty"`
	NewStatus   string `json:"new_status,omitempty"`
	RequestID   string `json:"request_id,omitempty"`
}

func (k *Kafka) Publish(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(payload{
		ID:          event.ID.String(),
		Category:    string(event.Category),
		Timestamp:   event.Timestamp.Format(time.RFC3339Nano),
		Action:      event.Action,
		Principal:   event.Principal.String(),
		CaseID:      uint64(event.CaseID),
		Owner:       event.Owner.String(),
		Org:         event.Org.String(),
		EvidenceRef: event.EvidenceRef,
		OldStatus:   event.OldStatus.String(),
		NewStatus:   event.NewStatus.String(),
		RequestID:   event.RequestID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(event.Principal.String()),
		Value: body,
	}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (k *Kafka) Close() {
	k.client.Close()
}
