// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about component builds and template registration.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetBuildHooks(&myBuildHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Build().OnBuildStart(typeKey, name, id)
//	// ... make geometry ...
//	observability.Build().OnBuildComplete(typeKey, name, id, duration, err)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Build Hooks
// =============================================================================

// BuildHooks receives events from the component build lifecycle.
type BuildHooks interface {
	// OnBuildStart fires before a component's geometry is (re)made.
	OnBuildStart(typeKey, name string, id int)

	// OnBuildComplete fires after Make returns, with its error if any.
	OnBuildComplete(typeKey, name string, id int, duration time.Duration, err error)

	// OnGeometryPurged records how many table rows a rebuild or delete removed.
	OnGeometryPurged(id, removed int)
}

// =============================================================================
// Template Hooks
// =============================================================================

// TemplateHooks receives events from per-design template registration.
type TemplateHooks interface {
	// OnTemplateRegistered fires when a type's template is stored for the
	// first time. explicit is true when the caller supplied the template.
	OnTemplateRegistered(typeKey string, explicit bool)

	// OnTemplateMissing fires when no template could be resolved.
	OnTemplateMissing(typeKey string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopBuildHooks is a no-op implementation of BuildHooks.
type NoopBuildHooks struct{}

func (NoopBuildHooks) OnBuildStart(string, string, int)                          {}
func (NoopBuildHooks) OnBuildComplete(string, string, int, time.Duration, error) {}
func (NoopBuildHooks) OnGeometryPurged(int, int)                                 {}

// NoopTemplateHooks is a no-op implementation of TemplateHooks.
type NoopTemplateHooks struct{}

func (NoopTemplateHooks) OnTemplateRegistered(string, bool) {}
func (NoopTemplateHooks) OnTemplateMissing(string)          {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	buildHooks    BuildHooks    = NoopBuildHooks{}
	templateHooks TemplateHooks = NoopTemplateHooks{}
	hooksMu       sync.RWMutex
)

// SetBuildHooks registers custom build hooks.
// This should be called once at application startup before any component is built.
func SetBuildHooks(h BuildHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		buildHooks = h
	}
}

// SetTemplateHooks registers custom template hooks.
func SetTemplateHooks(h TemplateHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		templateHooks = h
	}
}

// Build returns the registered build hooks.
func Build() BuildHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return buildHooks
}

// Template returns the registered template hooks.
func Template() TemplateHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return templateHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	buildHooks = NoopBuildHooks{}
	templateHooks = NoopTemplateHooks{}
}
