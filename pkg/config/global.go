package config

import (
	"context"
	"sync"
)

// Package-level resolver backing GetSettings. Guarded by defaultMu so the
// first resolution wins and later callers retrieve the stored value without
// re-running side effects.
var (
	defaultResolver = NewResolver()
	defaultMu       sync.Mutex
)

// GetSettings is the process-wide configuration entry point.
//
// The first call resolves settings from the discovered (or explicitly
// given) config file, the discovered secrets file, and the environment,
// then caches the result. Every later call returns the cached settings
// unchanged, even when configPath differs or the files were modified.
// Pass an empty configPath to rely on discovery.
func GetSettings(configPath string) (*Settings, error) {
	defaultMu.Lock()
	r := defaultResolver
	defaultMu.Unlock()
	return r.Resolve(context.Background(), configPath)
}

// resetForTest replaces the package-level resolver. Tests use this to clear
// the process-wide cache; options allow pointing discovery at a scratch
// filesystem.
func resetForTest(opts ...ResolverOption) {
	defaultMu.Lock()
	defaultResolver = NewResolver(opts...)
	defaultMu.Unlock()
}
