package middleware

import (
	"context"

	"github.com/vango-dev/uniroute/pkg/host"
)

// Decorator wraps a navigation surface.
type Decorator func(next host.Navigation) host.Navigation

// Chain applies decorators to nav. The first decorator is the outermost.
func Chain(nav host.Navigation, decorators ...Decorator) host.Navigation {
	for i := len(decorators) - 1; i >= 0; i-- {
		if decorators[i] != nil {
			nav = decorators[i](nav)
		}
	}
	return nav
}

// wrappedHost swaps the navigation surface of a host.
type wrappedHost struct {
	host.Lifecycle
	host.PageStack
	host.Navigation
}

// WrapHost returns h with its navigation primitives decorated.
func WrapHost(h host.Host, decorators ...Decorator) host.Host {
	return wrappedHost{
		Lifecycle:  h,
		PageStack:  h,
		Navigation: Chain(h, decorators...),
	}
}

// navFunc adapts a single interceptor to all five primitives.
type navFunc struct {
	next      host.Navigation
	intercept Interceptor
}

// Interceptor runs around one navigation. invoke calls the wrapped
// primitive with the given context.
type Interceptor func(ctx context.Context, call Call, invoke func(context.Context) error) error

// Intercept builds a Decorator from an Interceptor.
func Intercept(fn Interceptor) Decorator {
	return func(next host.Navigation) host.Navigation {
		return navFunc{next: next, intercept: fn}
	}
}

// Call describes one navigation.
type Call struct {
	// Method is the primitive name: navigateTo, redirectTo, reLaunch,
	// switchTab or navigateBack.
	Method string

	// URL is set for every method except navigateBack.
	URL string

	// Back is set for navigateBack.
	Back host.BackOptions
}
