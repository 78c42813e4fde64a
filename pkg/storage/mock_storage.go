package storage

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/arjun2112/finops-engine/pkg/models"
	"github.com/pkg/errors"
)

// mockStore implements Store with in-memory storage. Checkpoints are
// deep-copied through JSON so callers cannot mutate stored state.
type mockStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]byte
	records     []models.RunRecord
}

func NewMockStore() Store {
	return &mockStore{checkpoints: make(map[string][]byte)}
}

func (m *mockStore) SaveCheckpoint(state models.WorkflowState) error {
	if state.RunID == "" {
		return errors.New("checkpoint requires a run_id")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "marshal checkpoint")
	}
	m.mu.Lock()
	m.checkpoints[state.RunID] = data
	m.mu.Unlock()
	return nil
}

func (m *mockStore) LoadCheckpoint(runID string) (models.WorkflowState, error) {
	m.mu.RLock()
	data, ok := m.checkpoints[runID]
	m.mu.RUnlock()
	if !ok {
		return models.WorkflowState{}, ErrNotFound
	}
	var state models.WorkflowState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.WorkflowState{}, errors.Wrap(err, "unmarshal checkpoint")
	}
	return state, nil
}

func (m *mockStore) AppendRecord(rec models.RunRecord) error {
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return nil
}

func (m *mockStore) QueryRecords(since time.Time) ([]models.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.RunRecord
	for _, rec := range m.records {
		if !rec.ArchivedAt.Before(since) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArchivedAt.Before(out[j].ArchivedAt) })
	return out, nil
}

func (m *mockStore) Close() error {
	return nil
}
