// Package route exposes the active page's path and decoded query as an
// observable snapshot.
//
// Use registers a load hook and returns at once with an empty snapshot.
// When the runtime activates the page, the hook decodes the query, looks up
// the current page on the stack and publishes the result:
//
//	r := route.Use(h)
//	r.Subscribe(func(s route.Snapshot) {
//	    log.Println(s.Path, s.Query["id"])
//	})
//
// Decoding failures are returned from the hook to the runtime, and the
// snapshot is left as it was.
package route

import (
	"maps"
	"slices"
	"sync/atomic"

	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/query"
	"github.com/vango-dev/uniroute/pkg/reactive"
)

// Snapshot is the route state of a page.
type Snapshot struct {
	// Query holds decoded query values.
	Query map[string]string `json:"query"`

	// Path is the page route, e.g. "pages/detail/index".
	Path string `json:"path"`

	// FullPath is the page path with its query string.
	FullPath string `json:"fullPath"`
}

// Runtime is the part of the host the route needs.
type Runtime interface {
	host.Lifecycle
	host.PageStack
}

// Route is a live view of the active page's route state.
// Its identity is stable; the snapshot inside it is replaced on load.
type Route struct {
	cell   *reactive.Cell[Snapshot]
	loaded atomic.Bool

	// keys restricts Query to a fixed key set when non-nil.
	keys []string
}

// Use returns a Route with an empty snapshot and wires it to the runtime's
// load hook.
func Use(rt Runtime) *Route {
	r := &Route{
		cell: reactive.NewCell(Snapshot{Query: map[string]string{}}).
			// every load is published, even when nothing changed
			WithEquals(func(a, b Snapshot) bool { return false }),
	}
	rt.OnLoad(func(raw map[string]string) error {
		return r.load(rt, raw)
	})
	return r
}

// UseKeys is Use with a fixed key set: Query reports exactly these keys,
// with "" for any the page was not given.
func UseKeys(rt Runtime, keys ...string) *Route {
	r := Use(rt)
	r.keys = append([]string{}, keys...)
	return r
}

// load applies one page activation.
func (r *Route) load(ps host.PageStack, raw map[string]string) error {
	var decoded map[string]string
	if raw != nil {
		var err error
		decoded, err = query.DecodeMap(raw)
		if err != nil {
			return err
		}
	}

	var path, fullPath string
	if page := host.CurrentPage(ps); page != nil {
		path = page.Route()
		fullPath = page.FullPath()
	}

	r.cell.Update(func(s Snapshot) Snapshot {
		if raw != nil {
			s.Query = decoded
		}
		s.Path = path
		s.FullPath = fullPath
		return s
	})
	r.loaded.Store(true)
	return nil
}

// Snapshot returns the current state. The query map is a copy.
func (r *Route) Snapshot() Snapshot {
	s := r.cell.Get()
	s.Query = r.project(s.Query)
	return s
}

// Query returns a copy of the decoded query.
func (r *Route) Query() map[string]string {
	return r.project(r.cell.Get().Query)
}

// Param returns a single decoded query value. With UseKeys, listed keys
// are always present and other keys never are, as in Query.
func (r *Route) Param(key string) (string, bool) {
	q := r.cell.Get().Query
	if r.keys != nil {
		if !slices.Contains(r.keys, key) {
			return "", false
		}
		return q[key], true
	}
	v, ok := q[key]
	return v, ok
}

// Path returns the page route.
func (r *Route) Path() string {
	return r.cell.Get().Path
}

// FullPath returns the page path with its query string.
func (r *Route) FullPath() string {
	return r.cell.Get().FullPath
}

// Loaded reports whether the page has been activated.
func (r *Route) Loaded() bool {
	return r.loaded.Load()
}

// Subscribe calls fn with every published snapshot.
func (r *Route) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	return r.cell.Subscribe(func(s Snapshot) {
		s.Query = r.project(s.Query)
		fn(s)
	})
}

// Cell exposes the underlying cell for binding layers.
func (r *Route) Cell() *reactive.Cell[Snapshot] {
	return r.cell
}

func (r *Route) project(q map[string]string) map[string]string {
	if r.keys == nil {
		return maps.Clone(q)
	}
	out := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		out[k] = q[k]
	}
	return out
}
