// Package memhost implements an in-process page runtime.
//
// A Host keeps a page stack for the pages registered in a config.Config
// and applies the runtime's navigation rules:
//
//   - NavigateTo pushes a non-tab page, up to MaxPages deep.
//   - RedirectTo replaces the current page with a non-tab page.
//   - ReLaunch closes everything and opens any registered page.
//   - SwitchTab closes all non-tab pages and shows a tab page; the query is
//     dropped.
//   - NavigateBack pops pages, never the last one.
//
// OnLoad hooks belong to the next page that loads: they run once, after the
// stack is updated, with the still-encoded query of that page. Tab pages
// only load the first time they are shown.
//
// Example:
//
//	h := memhost.New(cfg)
//	r := route.Use(h)
//	nav := navigator.New(h)
//	_ = h.Launch(ctx)
//	_ = nav.Push(ctx, navigator.Target{URL: "/pages/detail/index", Query: query.Map{"id": 1}})
//	r.Path() // "pages/detail/index"
package memhost

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/uniroute/internal/config"
	"github.com/vango-dev/uniroute/internal/errors"
	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/query"
)

// Page is an open page.
type Page struct {
	route    string
	fullPath string
}

// Route implements host.Page.
func (p Page) Route() string { return p.route }

// FullPath implements host.Page.
func (p Page) FullPath() string { return p.fullPath }

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. If unset, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Host) {
		h.logger = logger
	}
}

// Host is an in-memory host.Host.
type Host struct {
	cfg    *config.Config
	logger *slog.Logger

	mu         sync.Mutex
	stack      *Stack
	loadedTabs map[string]bool

	hookMu sync.Mutex
	hooks  []host.LoadFunc
}

var _ host.Host = (*Host)(nil)

// New creates a host for the pages in cfg.
func New(cfg *config.Config, opts ...Option) *Host {
	h := &Host{
		cfg:        cfg,
		stack:      NewStack(),
		loadedTabs: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// OnLoad registers fn to run once, when the next page loads.
func (h *Host) OnLoad(fn host.LoadFunc) {
	if fn == nil {
		return
	}
	h.hookMu.Lock()
	h.hooks = append(h.hooks, fn)
	h.hookMu.Unlock()
}

// CurrentPages returns the open pages, most recent last.
func (h *Host) CurrentPages() []host.Page {
	h.mu.Lock()
	pages := h.stack.Pages()
	h.mu.Unlock()

	out := make([]host.Page, len(pages))
	for i, p := range pages {
		out[i] = p
	}
	return out
}

// Launch opens the entry page, closing anything already open.
func (h *Host) Launch(ctx context.Context) error {
	return h.ReLaunch(ctx, "/"+h.cfg.EntryPage())
}

// NavigateTo implements host.Navigation.
func (h *Host) NavigateTo(ctx context.Context, url string) error {
	return h.open(ctx, "navigateTo", url, func(p Page) error {
		if h.cfg.IsTabPage(p.route) {
			return errors.New("E103").
				WithDetailf("navigateTo cannot open tab page %q", p.route).
				WithSuggestion("use SwitchTab for tab pages")
		}
		if h.stack.Len() >= h.cfg.MaxPages {
			return errors.New("E104").
				WithDetailf("%d pages are already open", h.stack.Len()).
				WithSuggestion("use RedirectTo to replace the current page")
		}
		h.stack.Push(p)
		return nil
	})
}

// RedirectTo implements host.Navigation.
func (h *Host) RedirectTo(ctx context.Context, url string) error {
	return h.open(ctx, "redirectTo", url, func(p Page) error {
		if h.cfg.IsTabPage(p.route) {
			return errors.New("E103").
				WithDetailf("redirectTo cannot open tab page %q", p.route).
				WithSuggestion("use SwitchTab for tab pages")
		}
		h.stack.Replace(p)
		return nil
	})
}

// ReLaunch implements host.Navigation.
func (h *Host) ReLaunch(ctx context.Context, url string) error {
	return h.open(ctx, "reLaunch", url, func(p Page) error {
		h.stack.Clear()
		h.stack.Push(p)
		clear(h.loadedTabs)
		if h.cfg.IsTabPage(p.route) {
			h.loadedTabs[p.route] = true
		}
		return nil
	})
}

// SwitchTab implements host.Navigation. Any query on url is dropped.
func (h *Host) SwitchTab(ctx context.Context, url string) error {
	url, _, _ = strings.Cut(url, "?")
	return h.open(ctx, "switchTab", url, func(p Page) error {
		if !h.cfg.IsTabPage(p.route) {
			return errors.New("E102").
				WithDetailf("switchTab requires a tab page, %q is not one", p.route)
		}
		h.stack.Clear()
		h.stack.Push(p)
		if h.loadedTabs[p.route] {
			return errSkipLoad
		}
		h.loadedTabs[p.route] = true
		return nil
	})
}

// NavigateBack implements host.Navigation. A delta below 1 counts as 1 and
// a delta past the bottom stops at the first page.
func (h *Host) NavigateBack(ctx context.Context, opts host.BackOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stack.Len() <= 1 {
		return errors.New("E105").WithDetail("only one page is open")
	}
	delta := opts.Delta
	if delta < 1 {
		delta = 1
	}
	keep := h.stack.Len() - delta
	if keep < 1 {
		keep = 1
	}
	h.stack.Truncate(keep)

	h.logger.Debug("page stack popped",
		"delta", delta,
		"depth", h.stack.Len(),
		"animation", opts.AnimationType,
	)
	return nil
}

// errSkipLoad tells open that the page was shown without loading.
var errSkipLoad = errors.Newf(errors.CategoryNavigation, "load skipped")

// open resolves url, applies mutate to the stack under the lock and then
// runs the load hooks for the new page.
func (h *Host) open(ctx context.Context, method, url string, mutate func(Page) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !strings.HasPrefix(url, "/") {
		return errors.New("E106").WithDetailf("%s: %q must start with /", method, url)
	}

	path, rawQuery := query.SplitPath(url)
	route := config.NormalizeRoute(path)
	if !h.cfg.HasPage(route) {
		return errors.New("E101").WithDetailf("%s: page %q is not registered", method, route)
	}

	page := Page{route: route, fullPath: "/" + route}
	if rawQuery != "" {
		page.fullPath += "?" + rawQuery
	}

	h.mu.Lock()
	err := mutate(page)
	depth := h.stack.Len()
	h.mu.Unlock()

	skipLoad := err == errSkipLoad
	if err != nil && !skipLoad {
		h.logger.Debug("navigation rejected", "method", method, "url", url, "error", err)
		return err
	}
	h.logger.Debug("page opened", "method", method, "route", route, "depth", depth)

	if skipLoad {
		return nil
	}
	return h.fireLoad(query.RawMap(rawQuery))
}

func (h *Host) fireLoad(q map[string]string) error {
	h.hookMu.Lock()
	hooks := h.hooks
	h.hooks = nil
	h.hookMu.Unlock()

	var errs []error
	for _, fn := range hooks {
		if err := fn(q); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.New("E107").Wrap(stderrors.Join(errs...))
	}
	return nil
}
