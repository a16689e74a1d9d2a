package importer

import "sync"

// Manager tracks live wizard sessions by pipeline ID. Sessions are
// in-memory only: an import abandoned across a restart starts over, which
// matches how the old dashboard behaved when the browser session ended.
type Manager struct {
	mu        sync.Mutex
	pipelines map[string]*Pipeline
	maxSize   int64
	submitter Submitter
}

// NewManager creates a session manager producing pipelines with the given
// upload limit and CRM submitter.
func NewManager(maxSize int64, submitter Submitter) *Manager {
	return &Manager{
		pipelines: make(map[string]*Pipeline),
		maxSize:   maxSize,
		submitter: submitter,
	}
}

// Create starts a new wizard session and returns it.
func (m *Manager) Create() *Pipeline {
	p := NewPipeline(m.maxSize, m.submitter)
	m.mu.Lock()
	m.pipelines[p.ID] = p
	m.mu.Unlock()
	return p
}

// Get returns the session with the given ID, or nil if it doesn't exist.
func (m *Manager) Get(id string) *Pipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipelines[id]
}

// Delete removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pipelines, id)
}
