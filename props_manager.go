package analytics

import (
	"errors"
	"maps"
	"sync"
)

const maxPropKeyLen = 255

// PropsManager holds props attached to every event a Dispatcher sends.
type PropsManager struct {
	props map[string]any
	mu    sync.RWMutex
}

// NewPropsManager creates an empty props manager
func NewPropsManager() *PropsManager {
	return &PropsManager{props: make(map[string]any)}
}

// Set sets a global prop. Keys must be 1 to 255 bytes long.
func (m *PropsManager) Set(key string, value any) error {
	if len(key) == 0 {
		return errors.New("analytics: prop key cannot be empty")
	}
	if len(key) > maxPropKeyLen {
		return errors.New("analytics: prop key cannot exceed 255 characters")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[key] = value
	return nil
}

// Delete removes a global prop.
func (m *PropsManager) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.props, key)
}

// GetAll returns a copy of all global props, never nil.
func (m *PropsManager) GetAll() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.props)
}

// Apply returns a clone of event carrying the global props. Keys already set
// on the event win.
func (m *PropsManager) Apply(event *Event) *Event {
	out := event.Clone()

	m.mu.RLock()
	defer m.mu.RUnlock()
	for k, v := range m.props {
		if _, ok := out.props[k]; !ok {
			out.props[k] = v
		}
	}
	return out
}
