package session

import (
	"context"
	"encoding/json"
	"sync"

	"finsight/internal/api"
)

// MemoryRepository keeps the session record in process memory. It backs the
// "memory" session backend and the test suites. The record is stored as the
// serialized JSON the durable backends use, so malformed-data handling takes
// the same path.
type MemoryRepository struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Load(_ context.Context) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return Record{}, false, nil
	}
	var stored struct {
		Token string   `json:"token"`
		User  api.User `json:"user"`
	}
	if err := json.Unmarshal(m.data, &stored); err != nil {
		// Corrupted data is absent data.
		return Record{}, false, nil
	}
	return Record{Token: stored.Token, User: stored.User}, true, nil
}

func (m *MemoryRepository) Save(_ context.Context, rec Record) error {
	payload, err := json.Marshal(struct {
		Token string   `json:"token"`
		User  api.User `json:"user"`
	}{Token: rec.Token, User: rec.User})
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = payload
	m.mu.Unlock()
	return nil
}

func (m *MemoryRepository) Clear(_ context.Context) error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()
	return nil
}

// Corrupt overwrites the stored record with unparseable bytes. Test hook for
// the malformed-persisted-data path.
func (m *MemoryRepository) Corrupt() {
	m.mu.Lock()
	m.data = []byte("{not json")
	m.mu.Unlock()
}
