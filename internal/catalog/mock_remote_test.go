package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/contextsuite/catalogd/internal/model"
	"github.com/contextsuite/catalogd/internal/snapshot"
)

// mockRemote is a scripted RemoteClient for orchestrator tests.
type mockRemote struct {
	mu             sync.Mutex
	events         []model.Event
	filters        model.FilterOptions
	err            error
	fetchAllCalls  int
	fetchByIDCalls int
	block          chan struct{} // when non-nil, FetchAll waits until closed
}

func (m *mockRemote) FetchAll(_ context.Context) ([]model.Event, error) {
	m.mu.Lock()
	block := m.block
	m.fetchAllCalls++
	m.mu.Unlock()
	if block != nil {
		<-block
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockRemote) FetchEventByID(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	m.fetchByIDCalls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.events {
		if m.events[i].AirtableID == id {
			return &m.events[i], nil
		}
	}
	return nil, nil
}

func (m *mockRemote) FetchEventsByCategory(_ context.Context, category string) ([]model.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []model.Event
	for _, ev := range m.events {
		if ev.Category == category {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockRemote) FilterOptions(_ context.Context) (model.FilterOptions, error) {
	if m.err != nil {
		return model.FilterOptions{}, m.err
	}
	return m.filters, nil
}

func (m *mockRemote) allCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchAllCalls
}

// mockSnapshotStore is an in-memory SnapshotStore.
type mockSnapshotStore struct {
	mu      sync.Mutex
	snap    *model.Snapshot
	backups map[string]*model.Snapshot
	saveErr error
	saves   int
}

func newMockSnapshotStore() *mockSnapshotStore {
	return &mockSnapshotStore{backups: make(map[string]*model.Snapshot)}
}

func (m *mockSnapshotStore) Has() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap != nil
}

func (m *mockSnapshotStore) Load() (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *mockSnapshotStore) Save(_ context.Context, snap *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.snap = snap
	m.saves++
	return nil
}

func (m *mockSnapshotStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = nil
	return nil
}

func (m *mockSnapshotStore) ListBackups() ([]snapshot.BackupInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []snapshot.BackupInfo
	for name := range m.backups {
		out = append(out, snapshot.BackupInfo{Filename: name, Timestamp: time.Now()})
	}
	return out, nil
}

func (m *mockSnapshotStore) RestoreFromBackup(filename string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.backups[filename]
	if !ok {
		return errBackupNotFound
	}
	m.snap = snap
	return nil
}

func (m *mockSnapshotStore) Info() snapshot.Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return snapshot.Info{Exists: false}
	}
	return snapshot.Info{Exists: true, Metadata: &m.snap.Metadata}
}

// capturePublisher records published topics and payloads.
type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *capturePublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	p.topics = append(p.topics, topic)
	p.mu.Unlock()
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published(topic string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		if t == topic {
			return true
		}
	}
	return false
}
