// Package navigator wraps a runtime's navigation primitives and builds the
// query string for them.
//
// Example:
//
//	nav := navigator.New(h)
//	nav.NavigateTo(ctx, navigator.Target{
//	    URL:   "/pages/detail/index",
//	    Query: query.Map{"id": 1},
//	}) // host receives "/pages/detail/index?id=1"
//
//	nav.SwitchTab(ctx, navigator.Target{URL: "/pages/home/index"})
//	nav.Back(ctx)
//	nav.Go(ctx, 3)
//
// Errors from the runtime are returned unchanged.
package navigator

import (
	"context"
	"log/slog"
	"time"

	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/query"
)

// Target is a navigation destination.
type Target struct {
	// URL is the page path and should start with "/". It is not validated.
	URL string

	// Query is appended to URL. It may be nil, query.Values, query.Map
	// or query.Raw.
	Query query.Source
}

// URL returns the URL handed to the runtime for t.
func URL(t Target) string {
	return t.URL + query.Build(t.Query)
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithLogger sets the logger used for debug output of delegated calls.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// BackOption configures Back.
type BackOption func(*host.BackOptions)

// WithAnimation sets the platform transition name.
func WithAnimation(animationType string) BackOption {
	return func(o *host.BackOptions) {
		o.AnimationType = animationType
	}
}

// WithAnimationDuration sets the transition length.
func WithAnimationDuration(d time.Duration) BackOption {
	return func(o *host.BackOptions) {
		o.AnimationDuration = d
	}
}

// Navigator delegates navigation to a runtime. It holds no state besides
// its runtime and is safe for concurrent use if the runtime is.
type Navigator struct {
	nav    host.Navigation
	logger *slog.Logger
}

// New creates a navigator over nav.
func New(nav host.Navigation, opts ...Option) *Navigator {
	n := &Navigator{nav: nav}
	for _, opt := range opts {
		opt(n)
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n
}

// NavigateTo keeps the current page and opens t.
func (n *Navigator) NavigateTo(ctx context.Context, t Target) error {
	url := URL(t)
	n.logger.Debug("navigate", "method", "navigateTo", "url", url)
	return n.nav.NavigateTo(ctx, url)
}

// Push is NavigateTo.
func (n *Navigator) Push(ctx context.Context, t Target) error {
	return n.NavigateTo(ctx, t)
}

// RedirectTo closes the current page and opens t.
func (n *Navigator) RedirectTo(ctx context.Context, t Target) error {
	url := URL(t)
	n.logger.Debug("navigate", "method", "redirectTo", "url", url)
	return n.nav.RedirectTo(ctx, url)
}

// Replace is RedirectTo.
func (n *Navigator) Replace(ctx context.Context, t Target) error {
	return n.RedirectTo(ctx, t)
}

// ReLaunch closes every page and opens t.
func (n *Navigator) ReLaunch(ctx context.Context, t Target) error {
	url := URL(t)
	n.logger.Debug("navigate", "method", "reLaunch", "url", url)
	return n.nav.ReLaunch(ctx, url)
}

// SwitchTab opens the tab page t.URL. Tab pages take no query, so
// t.Query is ignored.
func (n *Navigator) SwitchTab(ctx context.Context, t Target) error {
	n.logger.Debug("navigate", "method", "switchTab", "url", t.URL)
	return n.nav.SwitchTab(ctx, t.URL)
}

// NavigateBack pops opts.Delta pages.
func (n *Navigator) NavigateBack(ctx context.Context, opts host.BackOptions) error {
	n.logger.Debug("navigate", "method", "navigateBack", "delta", opts.Delta)
	return n.nav.NavigateBack(ctx, opts)
}

// Back returns to the previous page.
func (n *Navigator) Back(ctx context.Context, opts ...BackOption) error {
	o := host.BackOptions{Delta: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return n.NavigateBack(ctx, o)
}

// Go pops delta pages.
func (n *Navigator) Go(ctx context.Context, delta int) error {
	return n.NavigateBack(ctx, host.BackOptions{Delta: delta})
}
