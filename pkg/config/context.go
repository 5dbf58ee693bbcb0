package config

import "context"

// ContextKey is an alias used for storing values in context.
type ContextKey string

// ResolverCtxKey is the context key used to store the *Resolver instance.
const ResolverCtxKey ContextKey = "config_resolver"

// ContextWithResolver stores a resolver in the context. Composition roots
// that prefer explicit wiring over the package-level entry point attach
// their resolver here and hand the context down.
func ContextWithResolver(ctx context.Context, r *Resolver) context.Context {
	return context.WithValue(ctx, ResolverCtxKey, r)
}

// ResolverFromContext retrieves the resolver from the context, falling back
// to the package-level resolver when none is attached.
func ResolverFromContext(ctx context.Context) *Resolver {
	if ctx != nil {
		if r, ok := ctx.Value(ResolverCtxKey).(*Resolver); ok && r != nil {
			return r
		}
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultResolver
}

// FromContext returns the effective settings for the provided context,
// resolving them on first use.
func FromContext(ctx context.Context) (*Settings, error) {
	return ResolverFromContext(ctx).Resolve(ctx, "")
}
