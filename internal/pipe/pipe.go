package pipe

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
)

// Provider answers Request calls on a pipe.
type Provider func(options ...any) (any, error)

// Subscriber is notified by Render calls on a pipe.
type Subscriber func(values ...any)

// record is the bookkeeping for a single pipe.
type record struct {
	source       Provider
	destinations []Subscriber
}

// Snapshot describes the current wiring of one pipe.
type Snapshot struct {
	Name         string
	HasSource    bool
	Destinations int
}

// Table is a set of named pipes. The zero value is not usable; use New.
type Table struct {
	mu     sync.Mutex
	pipes  map[string]*record
	logger *slog.Logger
	debug  atomic.Bool
}

// New creates an empty pipe table. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table{
		pipes:  make(map[string]*record),
		logger: logger,
	}
}

// SetDebug toggles dispatch tracing.
func (t *Table) SetDebug(on bool) {
	t.debug.Store(on)
}

// Debug reports whether dispatch tracing is on.
func (t *Table) Debug() bool {
	return t.debug.Load()
}

// get returns the record for name, creating it if needed. Callers hold t.mu.
func (t *Table) get(name string) *record {
	p, ok := t.pipes[name]
	if !ok {
		p = &record{}
		t.pipes[name] = p
	}
	return p
}

// Provide makes provider the source of the named pipe. An existing source is
// only replaced when replace is true.
func (t *Table) Provide(name string, provider Provider, replace bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.get(name)
	if p.source != nil && !replace {
		return fmt.Errorf("cannot override source of pipe %q: %w", name, ErrDuplicateProvider)
	}
	p.source = provider
	return nil
}

// Subscribe appends subscriber to the destinations of the named pipe.
func (t *Table) Subscribe(name string, subscriber Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.get(name)
	p.destinations = append(p.destinations, subscriber)
}

// Render calls every subscriber of the named pipe, in subscription order,
// with values.
func (t *Table) Render(name string, values ...any) {
	t.mu.Lock()
	p := t.get(name)
	destinations := make([]Subscriber, len(p.destinations))
	copy(destinations, p.destinations)
	t.mu.Unlock()

	if t.debug.Load() {
		t.logger.Debug("Rendering pipe.", "pipe", name, "values", values, "destinations", len(destinations))
	}

	for _, dst := range destinations {
		dst(values...)
	}
}

// Request calls the source of the named pipe with options and returns its
// result.
func (t *Table) Request(name string, options ...any) (any, error) {
	t.mu.Lock()
	source := t.get(name).source
	t.mu.Unlock()

	if t.debug.Load() {
		t.logger.Debug("Requesting pipe.", "pipe", name, "options", options, "has_source", source != nil)
	}

	if source == nil {
		return nil, fmt.Errorf("cannot request pipe %q: %w", name, ErrNoProvider)
	}
	return source(options...)
}

// Names returns the names of every pipe referenced so far, sorted.
func (t *Table) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.pipes))
	for name := range t.pipes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe reports the wiring of the named pipe without creating it.
func (t *Table) Describe(name string) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{Name: name}
	if p, ok := t.pipes[name]; ok {
		s.HasSource = p.source != nil
		s.Destinations = len(p.destinations)
	}
	return s
}
