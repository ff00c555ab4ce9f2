package driver

import (
	"sort"
	"strings"
	"sync"
)

// FilterFn is being used to decide if a driver should be included in the
// query result.
type FilterFn func(Driver) bool

// FilterID returns a filter function to query a driver by id.
func FilterID(id string) FilterFn {
	return func(d Driver) bool {
		return d.ID() == id
	}
}

// FilterDeviceType returns a filter function to query drivers by device type.
func FilterDeviceType(t DeviceType) FilterFn {
	return func(d Driver) bool {
		return d.Info().DeviceType == t
	}
}

// FilterLabel returns a filter function to query drivers whose label contains
// s, ignoring case.
func FilterLabel(s string) FilterFn {
	s = strings.ToLower(s)
	return func(d Driver) bool {
		return strings.Contains(strings.ToLower(d.Info().Label), s)
	}
}

// FilterAnd returns a filter function to take logical conjunction of given filters.
func FilterAnd(filters ...FilterFn) FilterFn {
	return func(d Driver) bool {
		for _, f := range filters {
			if !f(d) {
				return false
			}
		}
		return true
	}
}

// FilterNot returns a filter function to take logical inverse of given filter.
func FilterNot(filter FilterFn) FilterFn {
	return func(d Driver) bool {
		return !filter(d)
	}
}

// Manager keeps the registered drivers.
type Manager struct {
	mu      sync.Mutex
	drivers []Driver
}

var manager = NewManager()

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// GetManager returns the process-wide Manager output packages register with.
func GetManager() *Manager {
	return manager
}

// Register wraps a with a fresh id and adds it to m.
func (m *Manager) Register(a Adapter, info Info) Driver {
	d := wrapAdapter(a, info)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers = append(m.drivers, d)
	return d
}

// Query returns the drivers that pass filter, highest priority first.
// Drivers of equal priority keep their registration order.
func (m *Manager) Query(filter FilterFn) []Driver {
	m.mu.Lock()
	results := make([]Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		if filter == nil || filter(d) {
			results = append(results, d)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Info().Priority > results[j].Info().Priority
	})
	return results
}
