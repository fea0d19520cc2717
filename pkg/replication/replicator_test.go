package replication

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"catalog-post/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	runs []domain.RunRecord
	err  error
}

func (s *fakeSource) RecentRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	return s.runs, s.err
}

type fakeSink struct {
	mu      sync.Mutex
	saved   map[string]domain.RunRecord
	batches int
	calls   int
	err     error
}

func (s *fakeSink) SaveRuns(ctx context.Context, records []domain.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.saved == nil {
		s.saved = map[string]domain.RunRecord{}
	}
	s.batches++
	for _, r := range records {
		s.saved[r.RunID] = r
	}
	return nil
}

func runs(n int) []domain.RunRecord {
	out := make([]domain.RunRecord, n)
	for i := range out {
		out[i] = domain.RunRecord{RunID: fmt.Sprintf("run-%d", i), Outcome: "published"}
	}
	return out
}

func TestNewReplicator_Validation(t *testing.T) {
	_, err := NewReplicator(Config{Sink: &fakeSink{}})
	assert.Error(t, err)
	_, err = NewReplicator(Config{Source: &fakeSource{}})
	assert.Error(t, err)
}

func TestReplicator_Replicate(t *testing.T) {
	sink := &fakeSink{}
	r, err := NewReplicator(Config{Source: &fakeSource{runs: runs(250)}, Sink: sink, BatchSize: 100, Workers: 3})
	require.NoError(t, err)

	written, err := r.Replicate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 250, written)
	assert.Len(t, sink.saved, 250)
	assert.Equal(t, 3, sink.batches)
}

func TestReplicator_Replicate_Empty(t *testing.T) {
	r, err := NewReplicator(Config{Source: &fakeSource{}, Sink: &fakeSink{}})
	require.NoError(t, err)

	written, err := r.Replicate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, written)
}

func TestReplicator_Replicate_Errors(t *testing.T) {
	r, err := NewReplicator(Config{Source: &fakeSource{err: errors.New("mongo down")}, Sink: &fakeSink{}})
	require.NoError(t, err)
	_, err = r.Replicate(context.Background())
	assert.ErrorContains(t, err, "mongo down")

	r, err = NewReplicator(Config{Source: &fakeSource{runs: runs(3)}, Sink: &fakeSink{err: errors.New("pg down")}})
	require.NoError(t, err)
	written, err := r.Replicate(context.Background())
	assert.ErrorContains(t, err, "pg down")
	assert.Equal(t, 0, written)
}

func TestReplicator_StopsAfterFirstBatchError(t *testing.T) {
	sinkErr := errors.New("disk full")
	sink := &fakeSink{err: sinkErr}
	r, err := NewReplicator(Config{Source: &fakeSource{runs: runs(5)}, Sink: sink, BatchSize: 1, Workers: 1})
	require.NoError(t, err)

	written, err := r.Replicate(context.Background())

	require.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 0, written)
	assert.Equal(t, 1, sink.calls)
}
