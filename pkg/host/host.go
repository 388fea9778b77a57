// Package host declares the capabilities a page runtime hands to the route
// and navigator helpers: the page-load hook, the page stack, and the
// navigation primitives.
//
// The helpers never reach for globals; they receive these interfaces
// explicitly. memhost provides an in-process implementation and bridge
// provides one that drives a remote runtime over a WebSocket.
package host

import (
	"context"
	"time"
)

// Page is a handle to an open page.
type Page interface {
	// Route is the page path without a leading slash or query,
	// e.g. "pages/detail/index".
	Route() string

	// FullPath is the page path including its query string,
	// e.g. "/pages/detail/index?id=1".
	FullPath() string
}

// LoadFunc is called when a page becomes active. query holds the still
// percent-encoded values; nil means the runtime supplied no query at all.
// A returned error is surfaced to the runtime that invoked the hook.
type LoadFunc func(query map[string]string) error

// Lifecycle exposes the page-load hook.
type Lifecycle interface {
	OnLoad(fn LoadFunc)
}

// PageStack exposes the open pages, most recent last.
type PageStack interface {
	CurrentPages() []Page
}

// BackOptions configures a pop of one or more pages.
type BackOptions struct {
	// Delta is the number of pages to pop. 1 returns to the previous page.
	Delta int

	// AnimationType is a platform-specific transition name, e.g. "pop-out".
	AnimationType string

	// AnimationDuration is the transition length. Zero uses the runtime default.
	AnimationDuration time.Duration
}

// Navigation holds the navigation primitives. url is passed through as
// built by the caller; implementations own validation, retries and
// cancellation.
type Navigation interface {
	// NavigateTo keeps the current page and opens url on top of it.
	NavigateTo(ctx context.Context, url string) error

	// RedirectTo closes the current page and opens url in its place.
	RedirectTo(ctx context.Context, url string) error

	// ReLaunch closes every page and opens url.
	ReLaunch(ctx context.Context, url string) error

	// SwitchTab opens a tab-bar page and closes all non-tab pages.
	SwitchTab(ctx context.Context, url string) error

	// NavigateBack pops pages off the stack.
	NavigateBack(ctx context.Context, opts BackOptions) error
}

// Host is the full runtime surface.
type Host interface {
	Lifecycle
	PageStack
	Navigation
}

// CurrentPage returns the most recent page, or nil when the stack is empty.
func CurrentPage(ps PageStack) Page {
	pages := ps.CurrentPages()
	if len(pages) == 0 {
		return nil
	}
	return pages[len(pages)-1]
}

// StaticPage is a Page backed by fixed values.
type StaticPage struct {
	RoutePath string `json:"route"`
	Full      string `json:"fullPath"`
}

// Route implements Page.
func (p StaticPage) Route() string { return p.RoutePath }

// FullPath implements Page.
func (p StaticPage) FullPath() string { return p.Full }
