package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/uniroute/internal/errors"
	"github.com/vango-dev/uniroute/pkg/bridge"
	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/navigator"
	"github.com/vango-dev/uniroute/pkg/query"
	"github.com/vango-dev/uniroute/pkg/route"
)

// navigateRequest is the body of POST /control/navigate.
type navigateRequest struct {
	Method string         `json:"method"`
	URL    string         `json:"url"`
	Query  map[string]any `json:"query,omitempty"`
	Raw    *string        `json:"raw,omitempty"`

	Delta             int    `json:"delta,omitempty"`
	AnimationType     string `json:"animationType,omitempty"`
	AnimationDuration int64  `json:"animationDuration,omitempty"` // milliseconds
}

// navigateResponse reports the stack after a navigation and, when a page
// loaded, the route it observed.
type navigateResponse struct {
	Pages []host.StaticPage `json:"pages"`
	Route *route.Snapshot   `json:"route,omitempty"`
}

// control drives a host through the navigator over HTTP.
type control struct {
	h       host.Host
	nav     *navigator.Navigator
	logger  *slog.Logger
	timeout time.Duration

	// mu runs one navigation at a time, so the load hook registered for a
	// request sees that request's page.
	mu sync.Mutex
}

func newControl(h host.Host, logger *slog.Logger, timeout time.Duration) *control {
	return &control{
		h:       h,
		nav:     navigator.New(h, navigator.WithLogger(logger)),
		logger:  logger,
		timeout: timeout,
	}
}

// Routes mounts:
//
//	POST /navigate  run one navigation
//	GET  /pages     current page stack
func (c *control) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/navigate", c.handleNavigate)
	r.Get("/pages", bridge.PagesHandler(c.h, c.logger))
	return r
}

func (c *control) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, errors.New("E181").WithDetail("body is not valid JSON").Wrap(err))
		return
	}

	ctx := r.Context()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.navigate(ctx, req)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *control) navigate(ctx context.Context, req navigateRequest) (navigateResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rt := route.Use(c.h)
	if err := c.dispatch(ctx, req); err != nil {
		return navigateResponse{}, err
	}

	resp := navigateResponse{Pages: staticPages(c.h.CurrentPages())}
	if rt.Loaded() {
		snap := rt.Snapshot()
		resp.Route = &snap
	}
	return resp, nil
}

func (c *control) dispatch(ctx context.Context, req navigateRequest) error {
	target := navigator.Target{URL: req.URL}
	switch {
	case req.Raw != nil:
		target.Query = query.Raw(*req.Raw)
	case len(req.Query) > 0:
		target.Query = query.Map(req.Query)
	}

	switch req.Method {
	case "navigateTo", "push":
		return c.nav.NavigateTo(ctx, target)
	case "redirectTo", "replace":
		return c.nav.RedirectTo(ctx, target)
	case "reLaunch":
		return c.nav.ReLaunch(ctx, target)
	case "switchTab":
		return c.nav.SwitchTab(ctx, target)
	case "navigateBack":
		return c.nav.NavigateBack(ctx, host.BackOptions{
			Delta:             req.Delta,
			AnimationType:     req.AnimationType,
			AnimationDuration: time.Duration(req.AnimationDuration) * time.Millisecond,
		})
	case "back":
		return c.nav.Back(ctx)
	case "go":
		return c.nav.Go(ctx, req.Delta)
	default:
		return errors.New("E181").WithDetailf("unknown method %q", req.Method)
	}
}

func (c *control) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		c.logger.Error("control request failed", "error", err)
	} else {
		c.logger.Debug("control request rejected", "error", err)
	}

	var e *errors.Error
	if stderrors.As(err, &e) {
		writeJSON(w, status, e)
		return
	}
	writeJSON(w, status, map[string]string{"message": err.Error()})
}

// statusFor maps a navigation error to an HTTP status.
func statusFor(err error) int {
	switch errors.CodeOf(err) {
	case "E101", "E102", "E103", "E104", "E105":
		return http.StatusConflict
	case "E106", "E107", "E181":
		return http.StatusBadRequest
	case "E160":
		return http.StatusServiceUnavailable
	case "E161", "E162":
		return http.StatusBadGateway
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return 499
	}
	return http.StatusInternalServerError
}

func staticPages(pages []host.Page) []host.StaticPage {
	out := make([]host.StaticPage, len(pages))
	for i, p := range pages {
		out[i] = host.StaticPage{RoutePath: p.Route(), Full: p.FullPath()}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
