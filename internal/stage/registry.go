package stage

import (
	"fmt"
	"log/slog"
	"sort"

	"timbre/internal/config"
)

// Factory constructs a component from configuration.
type Factory func(cfg *config.Config, logger *slog.Logger) (Component, error)

// Registration describes one component the registry can build. Probe, when
// set, verifies the component's external capability (a binary on PATH, an
// optional dependency) before construction so a missing capability surfaces
// as a clear pipeline-build error instead of a mid-run crash.
type Registration struct {
	Category Category
	Name     string
	Probe    func() error
	New      Factory
}

// Registry maps component names to factories per category. Build one fresh
// per composer invocation; nothing here is shared or mutated afterward.
type Registry struct {
	entries map[Category]map[string]Registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Category]map[string]Registration)}
}

// Register adds a component registration, replacing any previous entry with
// the same category and name.
func (r *Registry) Register(reg Registration) {
	if reg.Name == "" || reg.New == nil {
		return
	}
	byName, ok := r.entries[reg.Category]
	if !ok {
		byName = make(map[string]Registration)
		r.entries[reg.Category] = byName
	}
	byName[reg.Name] = reg
}

// Contains reports whether name is registered under category.
func (r *Registry) Contains(category Category, name string) bool {
	_, ok := r.entries[category][name]
	return ok
}

// Lookup resolves a name across all categories.
func (r *Registry) Lookup(name string) (Registration, bool) {
	for _, category := range Categories() {
		if reg, ok := r.entries[category][name]; ok {
			return reg, true
		}
	}
	return Registration{}, false
}

// Names returns the registered names under category, sorted.
func (r *Registry) Names(category Category) []string {
	byName := r.entries[category]
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Available runs the registration's capability probe, if any.
func (reg Registration) Available() error {
	if reg.Probe == nil {
		return nil
	}
	return reg.Probe()
}

// Build probes and constructs the named component under category.
func (r *Registry) Build(category Category, name string, cfg *config.Config, logger *slog.Logger) (Component, error) {
	reg, ok := r.entries[category][name]
	if !ok {
		return nil, Wrap(ErrConfiguration, string(category), "build", fmt.Sprintf("unknown component %q", name), nil)
	}
	if err := reg.Available(); err != nil {
		return nil, Wrap(ErrUnavailable, string(category)+" - "+name, "build", "missing capability", err)
	}
	component, err := reg.New(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("build component %s: %w", name, err)
	}
	return component, nil
}
