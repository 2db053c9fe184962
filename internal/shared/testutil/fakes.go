package testutil

import (
	"context"
	"sync"

	"go-offboarding/internal/messaging/kafka"
	"go-offboarding/internal/shared/counter"

	"gorm.io/gorm"
)

// FakeCounter hands out increasing values per (company, type).
type FakeCounter struct {
	mu     sync.Mutex
	values map[string]int64
	Err    error
}

func (f *FakeCounter) WithTx(tx *gorm.DB) counter.Repository {
	return f
}

func (f *FakeCounter) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		f.values = map[string]int64{}
	}
	key := companyID + ":" + counterType
	f.values[key]++
	return f.values[key], nil
}

// FakeOutbox keeps every created event in memory.
type FakeOutbox struct {
	mu     sync.Mutex
	Events []kafka.OutboxEvent
}

func (f *FakeOutbox) WithTx(tx *gorm.DB) kafka.OutboxRepository {
	return f
}

func (f *FakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, event)
	return nil
}

func (f *FakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *FakeOutbox) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *FakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}
