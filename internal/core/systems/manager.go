package systems

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrSystemExists   = errors.New("system already registered")
	ErrSystemNotFound = errors.New("system not found")
)

type entry[W any] struct {
	system  System[W]
	order   int
	state   StateIdentity
	metrics Metrics
}

// Manager orchestrates systems in phase order. It is not safe for concurrent
// use; the owning loop drives it from a single goroutine.
type Manager[W any] struct {
	entries   []*entry[W]
	byName    map[string]*entry[W]
	nextOrder int
	onError   func(name string, err error)
}

func NewManager[W any]() *Manager[W] {
	return &Manager[W]{byName: make(map[string]*entry[W])}
}

// OnSystemError registers a callback invoked for every failed Update.
func (m *Manager[W]) OnSystemError(fn func(name string, err error)) {
	m.onError = fn
}

func (m *Manager[W]) RegisterSystem(s System[W]) error {
	name := s.Name()
	if _, ok := m.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrSystemExists, name)
	}
	e := &entry[W]{system: s, order: m.nextOrder, state: StateEnabled}
	m.nextOrder++
	m.entries = append(m.entries, e)
	m.byName[name] = e
	sort.SliceStable(m.entries, func(i, j int) bool {
		pi, pj := m.entries[i].system.ExecutionPhase(), m.entries[j].system.ExecutionPhase()
		if pi != pj {
			return pi < pj
		}
		return m.entries[i].order < m.entries[j].order
	})
	return nil
}

func (m *Manager[W]) UnregisterSystem(name string) error {
	if _, ok := m.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	delete(m.byName, name)
	for i, e := range m.entries {
		if e.system.Name() == name {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Manager[W]) HasSystem(name string) bool {
	_, ok := m.byName[name]
	return ok
}

func (m *Manager[W]) EnableSystem(name string) error {
	return m.setState(name, StateEnabled)
}

func (m *Manager[W]) DisableSystem(name string) error {
	return m.setState(name, StateDisabled)
}

func (m *Manager[W]) setState(name string, s StateIdentity) error {
	e, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSystemNotFound, name)
	}
	e.state = s
	return nil
}

// Update runs every enabled system once. A failing system does not stop the
// tick; errors are joined and returned.
func (m *Manager[W]) Update(deltaTime float64, world W) error {
	var all error
	for _, e := range m.entries {
		if e.state == StateDisabled {
			continue
		}
		start := time.Now()
		err := e.system.Update(deltaTime, world)
		elapsed := time.Since(start)

		e.metrics.ExecutionCount++
		e.metrics.TotalExecutionTime += elapsed
		if elapsed > e.metrics.MaxExecutionTime {
			e.metrics.MaxExecutionTime = elapsed
		}
		e.metrics.LastExecutionTime = start
		if err != nil {
			e.metrics.ErrorCount++
			e.metrics.LastError = err
			e.state = StateFailed
			if m.onError != nil {
				m.onError(e.system.Name(), err)
			}
			all = errors.Join(all, fmt.Errorf("%s: %w", e.system.Name(), err))
			continue
		}
		e.state = StateEnabled
	}
	return all
}

// GetExecutionOrder lists system names in the order Update runs them.
func (m *Manager[W]) GetExecutionOrder() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.system.Name()
	}
	return out
}

func (m *Manager[W]) GetSystemMetrics(name string) (Metrics, bool) {
	e, ok := m.byName[name]
	if !ok {
		return Metrics{}, false
	}
	return e.metrics, true
}

func (m *Manager[W]) GetSystemState(name string) (StateIdentity, bool) {
	e, ok := m.byName[name]
	if !ok {
		return 0, false
	}
	return e.state, true
}
