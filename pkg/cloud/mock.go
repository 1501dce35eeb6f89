package cloud

import (
	"fmt"
	"sync"
)

// SetCall records one successful write seen by the Mock.
type SetCall struct {
	Path  string
	Value any
}

// Mock is an in-memory stand-in for the remote store, used by tests and by
// `-mock` runs. Failures are injected per path (GetErrs) or consumed from a
// scripted queue (SetErrs), mirroring a flaky radio link.
type Mock struct {
	mu sync.Mutex

	// Objects maps paths to the object a Get returns.
	Objects map[string]Object

	// GetErrs makes Get fail for a given path until the entry is removed.
	GetErrs map[string]error

	// SetErrs is consumed one entry per Set call; a nil entry means that
	// call succeeds. When the queue is empty every Set succeeds.
	SetErrs []error

	sets []SetCall
}

// NewMock creates an empty mock store.
func NewMock() *Mock {
	return &Mock{
		Objects: make(map[string]Object),
		GetErrs: make(map[string]error),
	}
}

// Get retrieves the object seeded at path.
func (m *Mock) Get(path string) (Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.GetErrs[path]; ok {
		return nil, err
	}
	obj, ok := m.Objects[path]
	if !ok {
		return nil, fmt.Errorf("get %s: no value at path", path)
	}
	return obj, nil
}

// Set records the write, unless the scripted error queue says it fails.
func (m *Mock) Set(path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.SetErrs) > 0 {
		err := m.SetErrs[0]
		m.SetErrs = m.SetErrs[1:]
		if err != nil {
			return err
		}
	}

	m.sets = append(m.sets, SetCall{Path: path, Value: value})
	return nil
}

// Sets returns the successful writes in order.
func (m *Mock) Sets() []SetCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SetCall, len(m.sets))
	copy(out, m.sets)
	return out
}
