package extension

import (
	"errors"
	"fmt"
)

// Loader selects, resolves, and runs webhook extensions.
type Loader struct {
	provider Provider
	enabled  []string
	logger   Logger
}

// NewLoader creates a loader over a provider. The enabled slice is the
// allow-list from config: nil loads every discovered extension, an
// explicit empty list loads none.
func NewLoader(provider Provider, enabled []string) (*Loader, error) {
	if provider == nil {
		return nil, fmt.Errorf("extension loader requires a provider")
	}
	return &Loader{
		provider: provider,
		enabled:  enabled,
		logger:   noopLogger{},
	}, nil
}

// SetLogger sets the logger for load reporting.
func (l *Loader) SetLogger(logger Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// Load enumerates the extension group, resolves the selected entry
// points, and invokes each register function once with host. A failing
// extension does not stop the rest; every failure is collected into
// the returned error. The count of successfully loaded extensions is
// returned either way.
func (l *Loader) Load(host Host) (int, error) {
	if host.Registry == nil {
		return 0, fmt.Errorf("extension host requires a route registry")
	}
	if host.Logger == nil {
		host.Logger = l.logger
	}

	var errs []error
	loaded := 0
	for _, ep := range l.provider.Enumerate(Group) {
		if !l.selected(ep.Name) {
			l.logger.Debug("extension not enabled, skipping", "name", ep.Name)
			continue
		}

		fn, err := ep.Resolve()
		if err != nil {
			errs = append(errs, fmt.Errorf("resolving extension %q: %w", ep.Name, err))
			continue
		}
		if fn == nil {
			errs = append(errs, fmt.Errorf("extension %q resolved to no register function", ep.Name))
			continue
		}

		if err := fn(host); err != nil {
			errs = append(errs, fmt.Errorf("loading extension %q: %w", ep.Name, err))
			continue
		}

		loaded++
		l.logger.Info("extension loaded", "name", ep.Name)
	}

	return loaded, errors.Join(errs...)
}

// selected reports whether an entry point name passes the allow-list.
// Selection happens before resolution, so skipped extensions never run
// any code.
func (l *Loader) selected(name string) bool {
	if l.enabled == nil {
		return true
	}
	for _, enabled := range l.enabled {
		if enabled == name {
			return true
		}
	}
	return false
}
