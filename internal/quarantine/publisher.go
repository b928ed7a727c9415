// Package quarantine fans rejected rows out to a dead-letter topic so data
// stewards can watch rejection patterns without querying the warehouse. The
// warehouse staging table stays the system of record; this sink is optional.
package quarantine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	"onetl/internal/transform"
)

// Event is the wire form of one quarantined row. Raw field values are
// carried verbatim, matching the staging table.
type Event struct {
	RunID             string `json:"run_id"`
	Domain            string `json:"domain"`
	Reason            string `json:"error_reason"`
	OnetsocCode       string `json:"onetsoc_code"`
	ElementID         string `json:"element_id"`
	ScaleID           string `json:"scale_id"`
	DataValue         string `json:"data_value"`
	N                 string `json:"n"`
	StandardError     string `json:"standard_error"`
	LowerCIBound      string `json:"lower_ci_bound"`
	UpperCIBound      string `json:"upper_ci_bound"`
	RecommendSuppress string `json:"recommend_suppress"`
	NotRelevant       string `json:"not_relevant"`
	DateUpdated       string `json:"date_updated"`
	DomainSource      string `json:"domain_source"`
}

// Publisher emits quarantine events to a Kafka topic.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects to the given brokers. The topic must already exist;
// this publisher does no topic administration.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect quarantine brokers: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish emits one event per invalid row, keyed by SOC code so consumers
// see per-occupation rejections in order.
func (p *Publisher) Publish(ctx context.Context, runID string, rows []transform.InvalidSkaRow) error {
	records := make([]*kgo.Record, 0, len(rows))
	for _, row := range rows {
		payload, err := json.Marshal(eventFrom(runID, row))
		if err != nil {
			return fmt.Errorf("encode quarantine event: %w", err)
		}
		records = append(records, &kgo.Record{
			Topic: p.topic,
			Key:   []byte(row.Record.OnetsocCode),
			Value: payload,
		})
	}
	if len(records) == 0 {
		return nil
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("publish quarantine events: %w", err)
	}
	return nil
}

// Close flushes and tears down the client.
func (p *Publisher) Close() {
	p.client.Close()
}

func eventFrom(runID string, row transform.InvalidSkaRow) Event {
	r := row.Record
	return Event{
		RunID:             runID,
		Domain:            string(row.Domain),
		Reason:            string(row.Reason),
		OnetsocCode:       r.OnetsocCode,
		ElementID:         r.ElementID,
		ScaleID:           r.ScaleID,
		DataValue:         r.DataValue,
		N:                 r.N,
		StandardError:     r.StandardError,
		LowerCIBound:      r.LowerCIBound,
		UpperCIBound:      r.UpperCIBound,
		RecommendSuppress: r.RecommendSuppress,
		NotRelevant:       r.NotRelevant,
		DateUpdated:       r.DateUpdated,
		DomainSource:      r.DomainSource,
	}
}
