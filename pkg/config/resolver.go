package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/afero"
)

// Resolver orchestrates configuration resolution: file discovery, YAML
// loading, secrets merging, schema binding, and memoization of the result.
//
// Resolution runs at most once per Resolver. The first successful Resolve
// stores its result and every later call returns the stored value without
// touching the filesystem again, regardless of the path argument. Callers
// needing a fresh read must construct a new Resolver.
type Resolver struct {
	fs      afero.Fs
	locator *Locator
	service Service

	mu     sync.Mutex
	cached *Settings
}

// ResolverOption customizes a Resolver.
type ResolverOption func(*Resolver)

// WithFs sets the filesystem used for discovery and reads.
func WithFs(fsys afero.Fs) ResolverOption {
	return func(r *Resolver) {
		r.fs = fsys
		r.locator.fs = fsys
	}
}

// WithWorkDir sets the directory the upward search starts from.
func WithWorkDir(dir string) ResolverOption {
	return func(r *Resolver) {
		r.locator.start = dir
	}
}

// WithService sets the loading service used to bind trees onto the schema.
func WithService(service Service) ResolverOption {
	return func(r *Resolver) {
		r.service = service
	}
}

// NewResolver creates a Resolver over the OS filesystem, searching from the
// current working directory.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		fs:      afero.NewOsFs(),
		locator: NewLocator(),
		service: NewService(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the effective settings for the process.
//
// The config file is the explicit path when given, otherwise the nearest
// discovered candidate. No config file at all, or an explicit path that
// does not exist, silently resolves to defaults. A secrets file, when
// discovered, is deep-merged over the config tree before binding. Parse
// and validation failures propagate; nothing is cached on failure.
func (r *Resolver) Resolve(ctx context.Context, explicitPath string) (*Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached != nil {
		return r.cached, nil
	}

	tree, err := r.resolveTree(explicitPath)
	if err != nil {
		return nil, err
	}

	settings, err := r.service.Load(ctx, NewTreeProvider(tree, SourceYAML))
	if err != nil {
		return nil, err
	}

	r.cached = settings
	return settings, nil
}

// resolveTree determines the config file, parses it, and layers the secrets
// file over it.
func (r *Resolver) resolveTree(explicitPath string) (map[string]any, error) {
	configPath, found := "", false
	if explicitPath != "" {
		// An explicit path that is missing on disk falls through to
		// defaults rather than raising. Callers needing strictness must
		// stat the path themselves first.
		if ok, err := afero.Exists(r.fs, explicitPath); err == nil && ok {
			configPath, found = explicitPath, true
		}
	} else {
		configPath, found = r.locator.FindConfig()
	}

	if !found {
		return map[string]any{}, nil
	}

	tree, err := NewYAMLProviderAt(r.fs, configPath, SourceYAML).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Secrets are discovered independently of the config file location.
	// A present but malformed secrets file aborts the entire resolution.
	if secretsPath, ok := r.locator.FindSecrets(); ok {
		secrets, err := NewYAMLProviderAt(r.fs, secretsPath, SourceSecrets).Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load secrets file: %w", err)
		}
		tree = DeepMerge(tree, secrets)
	}

	return tree, nil
}
