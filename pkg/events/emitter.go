// Package events handles event emission for dataset lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/JamesPrial/pii-leak-test/pkg/generate"
	"github.com/JamesPrial/pii-leak-test/pkg/kafka"
	"github.com/JamesPrial/pii-leak-test/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter publishes dataset lifecycle events
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitDatasetGenerated emits a dataset.generated event. Record contents never
// ride on the event, only counts and the seed needed to reproduce them.
func (e *Emitter) EmitDatasetGenerated(ctx context.Context, datasetID string, kind generate.Kind, ds *generate.Dataset) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDatasetGenerated")
	defer span.End()

	event := &kafka.DatasetEvent{
		EventType:   "dataset.generated",
		DatasetID:   datasetID,
		Kind:        string(kind),
		Seed:        ds.Seed,
		StaffCount:  len(ds.Staff),
		ClientCount: len(ds.Clients),
	}

	if err := e.producer.PublishDatasetEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit dataset.generated event")
		return err
	}

	return nil
}

// EmitDatasetPersisted emits a dataset.persisted event after both tables are
// committed.
func (e *Emitter) EmitDatasetPersisted(ctx context.Context, datasetID string, staffCount, clientCount int) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitDatasetPersisted")
	defer span.End()

	event := &kafka.DatasetEvent{
		EventType:   "dataset.persisted",
		DatasetID:   datasetID,
		StaffCount:  staffCount,
		ClientCount: clientCount,
	}

	if err := e.producer.PublishDatasetEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit dataset.persisted event")
		return err
	}

	return nil
}

// EmitLeakDetected emits a leak.detected event with the scan summary.
func (e *Emitter) EmitLeakDetected(ctx context.Context, datasetID string, findings map[string]int) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitLeakDetected")
	defer span.End()

	data := map[string]any{
		"schema_version": SchemaVersion,
		"findings":       findings,
	}
	dataJSON, _ := json.Marshal(data)

	event := &kafka.DatasetEvent{
		EventType: "leak.detected",
		DatasetID: datasetID,
		Data:      dataJSON,
	}

	if err := e.producer.PublishDatasetEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit leak.detected event")
		return err
	}

	return nil
}
