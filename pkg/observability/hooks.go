// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about listing decoding and per-routine graph recovery.
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
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetListingHooks(&myListingHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnRoutineStart(ctx, routine, ops)
//	// ... build and minimize ...
//	observability.Pipeline().OnRoutineComplete(ctx, routine, vertices, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the control flow recovery pipeline.
type PipelineHooks interface {
	// Run events
	OnRunStart(ctx context.Context, routines, workers int)
	OnRunComplete(ctx context.Context, routines, failed int, duration time.Duration)

	// Routine events
	OnRoutineStart(ctx context.Context, routine, ops int)
	OnRoutineComplete(ctx context.Context, routine, vertices int, duration time.Duration, err error)

	// OnBranchUnstructured records a branch the structurer had to skip.
	OnBranchUnstructured(ctx context.Context, routine, vertex int, reason string)
}

// =============================================================================
// Listing Hooks
// =============================================================================

// ListingHooks receives events from listing input and output.
type ListingHooks interface {
	// OnRead records a decoded listing.
	OnRead(ctx context.Context, source string, routines int, duration time.Duration, err error)

	// OnExport records a written result.
	OnExport(ctx context.Context, path string, size int, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnRunStart(context.Context, int, int)                   {}
func (NoopPipelineHooks) OnRunComplete(context.Context, int, int, time.Duration) {}
func (NoopPipelineHooks) OnRoutineStart(context.Context, int, int)               {}
func (NoopPipelineHooks) OnBranchUnstructured(context.Context, int, int, string) {}
func (NoopPipelineHooks) OnRoutineComplete(context.Context, int, int, time.Duration, error) {
}

// NoopListingHooks is a no-op implementation of ListingHooks.
type NoopListingHooks struct{}

func (NoopListingHooks) OnRead(context.Context, string, int, time.Duration, error) {}
func (NoopListingHooks) OnExport(context.Context, string, int, error)              {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	listingHooks  ListingHooks  = NoopListingHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetListingHooks registers custom listing hooks.
func SetListingHooks(h ListingHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		listingHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Listing returns the registered listing hooks.
func Listing() ListingHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return listingHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	listingHooks = NoopListingHooks{}
}
