package extension

import "sync"

// StaticProvider serves entry points compiled into the binary. The
// built-in hooks register here at daemon startup; tests use it to feed
// the loader without any real discovery mechanism.
type StaticProvider struct {
	mu     sync.RWMutex
	groups map[string][]EntryPoint
}

// NewStaticProvider creates an empty provider.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		groups: make(map[string][]EntryPoint),
	}
}

// Add registers fn as a named entry point in group. Names are not
// deduplicated; a duplicate simply loads twice and the registry's
// last-writer-wins rule settles any route overlap.
func (p *StaticProvider) Add(group, name string, fn RegisterFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups[group] = append(p.groups[group], EntryPoint{
		Name: name,
		Resolve: func() (RegisterFunc, error) {
			return fn, nil
		},
	})
}

// Enumerate returns the entry points registered for group, in
// registration order.
func (p *StaticProvider) Enumerate(group string) []EntryPoint {
	p.mu.RLock()
	defer p.mu.RUnlock()
	points := make([]EntryPoint, len(p.groups[group]))
	copy(points, p.groups[group])
	return points
}
