// Package bridge serves host.Host over a WebSocket.
//
// A page runtime (for example a mini-program shell or a test driver)
// connects to /ws and then acts as the host: navigation calls on the Server
// become "navigate" frames, and the runtime answers each with a "result"
// frame carrying the same id. When a page loads, the runtime sends a "load"
// frame with the page's still-encoded query and the current page stack; the
// Server mirrors the stack and runs the pending OnLoad hooks on their own
// goroutine, so a hook may navigate. A navigation returns once the hooks of
// the page it loaded have run.
//
// Only one runtime may be connected at a time.
//
//	s := bridge.NewServer(bridge.Config{Metrics: m})
//	r := route.Use(s)
//	nav := navigator.New(s)
//	http.ListenAndServe(":8790", s.Routes())
package bridge

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/uniroute/internal/errors"
	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/middleware"
)

// Config configures a Server.
type Config struct {
	// Logger receives connection and frame logs. Default: slog.Default().
	Logger *slog.Logger

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the upgrade request origin.
	// If nil, only same-origin requests are accepted.
	CheckOrigin func(r *http.Request) bool

	// Metrics records connection and frame counts. Optional.
	Metrics *middleware.Metrics

	// Gatherer backs GET /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// Server is a host.Host backed by a connected runtime.
type Server struct {
	logger   *slog.Logger
	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader

	mu       sync.Mutex
	conn     *websocket.Conn
	pending  map[uint64]*pendingCall
	pages    []host.Page
	hooks    []host.LoadFunc
	loads    uint64
	lastLoad chan struct{}

	writeMu sync.Mutex
	nextID  atomic.Uint64
}

var _ host.Host = (*Server)(nil)

// pendingCall is a command waiting for its result frame.
type pendingCall struct {
	ch chan result

	// loads is the number of load frames seen when the command was sent.
	loads uint64
}

// result carries a result frame and, when the runtime reported a load
// after the command was sent, a channel closed once that load's hooks ran.
type result struct {
	frame  Frame
	loaded <-chan struct{}
}

// NewServer creates a Server with no runtime connected.
func NewServer(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gatherer := config.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		logger:   logger.With("component", "bridge"),
		metrics:  config.Metrics,
		gatherer: gatherer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		pending: make(map[uint64]*pendingCall),
	}
}

// AllowOrigins returns a CheckOrigin func accepting the listed origins.
// "*" accepts any origin. An empty list returns nil.
func AllowOrigins(origins []string) func(*http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		if allowed["*"] {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// Routes returns the HTTP surface:
//
//	GET /ws       runtime WebSocket
//	GET /pages    current page stack as JSON
//	GET /metrics  Prometheus metrics
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/ws", s.HandleWebSocket)
	r.Get("/pages", PagesHandler(s, s.logger))
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// Connected reports whether a runtime is attached.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// HandleWebSocket upgrades the request and serves the runtime until it
// disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.metrics.RecordWebSocketError("upgrade")
		return
	}

	s.mu.Lock()
	if s.conn != nil {
		s.mu.Unlock()
		s.logger.Warn("runtime rejected: already connected", "remote", r.RemoteAddr)
		rejected := errors.New("E163")
		s.writeTo(conn, Frame{Type: FrameError, Code: rejected.Code, Error: rejected.Message})
		conn.Close()
		return
	}
	s.conn = conn
	s.mu.Unlock()

	s.metrics.RecordConnect()
	s.logger.Info("runtime connected", "remote", r.RemoteAddr)

	s.readLoop(conn)

	s.detach(conn)
	conn.Close()
	s.metrics.RecordDisconnect()
	s.logger.Info("runtime disconnected", "remote", r.RemoteAddr)
}

func (s *Server) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Error("websocket read failed", "error", err)
				s.metrics.RecordWebSocketError("read")
			}
			return
		}

		f, err := DecodeFrame(data)
		if err != nil {
			s.logger.Warn("bad frame from runtime", "error", err)
			s.metrics.RecordFrame("in", "invalid")
			s.reply(Frame{Type: FrameError, Code: errors.CodeOf(err), Error: err.Error()})
			continue
		}
		s.metrics.RecordFrame("in", string(f.Type))

		switch f.Type {
		case FrameResult:
			s.resolve(f)
		case FrameLoad:
			s.load(f)
		case FrameError:
			s.logger.Warn("runtime reported error", "code", f.Code, "error", f.Error)
		default:
			s.logger.Debug("ignoring frame", "type", f.Type)
		}
	}
}

// detach forgets conn and fails every command still waiting on it.
func (s *Server) detach(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != conn {
		return
	}
	s.conn = nil
	for id, p := range s.pending {
		p.ch <- result{frame: Frame{ID: id, Type: FrameResult, Code: "E160"}}
		delete(s.pending, id)
	}
}

func (s *Server) resolve(f Frame) {
	s.mu.Lock()
	p, ok := s.pending[f.ID]
	delete(s.pending, f.ID)
	var loaded <-chan struct{}
	if ok && s.loads > p.loads {
		loaded = s.lastLoad
	}
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("result for unknown command", "id", f.ID)
		return
	}
	p.ch <- result{frame: f, loaded: loaded}
}

// load mirrors the reported stack and starts the pending hooks. Hooks run
// off the read loop so they may navigate.
func (s *Server) load(f Frame) {
	pages := make([]host.Page, len(f.Pages))
	for i, p := range f.Pages {
		pages[i] = p
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.pages = pages
	hooks := s.hooks
	s.hooks = nil
	s.loads++
	s.lastLoad = done
	s.mu.Unlock()

	if len(hooks) == 0 {
		close(done)
		return
	}

	q := f.Query
	if q == nil {
		q = map[string]string{}
	}
	go s.runHooks(hooks, q, done)
}

func (s *Server) runHooks(hooks []host.LoadFunc, q map[string]string, done chan struct{}) {
	defer close(done)

	var errs []error
	for _, fn := range hooks {
		if err := fn(q); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return
	}
	wrapped := errors.New("E107").Wrap(stderrors.Join(errs...))
	s.logger.Warn("load hook failed", "error", wrapped)
	s.reply(Frame{Type: FrameError, Code: wrapped.Code, Error: wrapped.FormatCompact()})
}

// OnLoad registers fn to run once, when the runtime next reports a load.
func (s *Server) OnLoad(fn host.LoadFunc) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, fn)
	s.mu.Unlock()
}

// CurrentPages returns the stack reported by the last load frame.
func (s *Server) CurrentPages() []host.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]host.Page, len(s.pages))
	copy(out, s.pages)
	return out
}

// NavigateTo implements host.Navigation.
func (s *Server) NavigateTo(ctx context.Context, url string) error {
	return s.call(ctx, navigateFrame("navigateTo", url, host.BackOptions{}))
}

// RedirectTo implements host.Navigation.
func (s *Server) RedirectTo(ctx context.Context, url string) error {
	return s.call(ctx, navigateFrame("redirectTo", url, host.BackOptions{}))
}

// ReLaunch implements host.Navigation.
func (s *Server) ReLaunch(ctx context.Context, url string) error {
	return s.call(ctx, navigateFrame("reLaunch", url, host.BackOptions{}))
}

// SwitchTab implements host.Navigation.
func (s *Server) SwitchTab(ctx context.Context, url string) error {
	return s.call(ctx, navigateFrame("switchTab", url, host.BackOptions{}))
}

// NavigateBack implements host.Navigation.
func (s *Server) NavigateBack(ctx context.Context, opts host.BackOptions) error {
	return s.call(ctx, navigateFrame("navigateBack", "", opts))
}

// call sends f and waits for its result.
func (s *Server) call(ctx context.Context, f Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	conn := s.conn
	if conn == nil {
		s.mu.Unlock()
		return errors.New("E160").WithDetailf("%s %s", f.Method, f.URL)
	}
	f.ID = s.nextID.Add(1)
	ch := make(chan result, 1)
	s.pending[f.ID] = &pendingCall{ch: ch, loads: s.loads}
	s.mu.Unlock()

	s.logger.Debug("sending command", "id", f.ID, "method", f.Method, "url", f.URL, "delta", f.Delta)
	if err := s.writeTo(conn, f); err != nil {
		s.forget(f.ID)
		return errors.New("E160").WithDetailf("%s %s", f.Method, f.URL).Wrap(err)
	}

	select {
	case <-ctx.Done():
		s.forget(f.ID)
		return ctx.Err()
	case res := <-ch:
		// the page's load hooks finish before the navigation returns
		if res.loaded != nil {
			select {
			case <-res.loaded:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		switch {
		case res.frame.Code == "E160":
			return errors.New("E160").WithDetailf("%s %s: runtime went away", f.Method, f.URL)
		case res.frame.Error != "":
			return errors.New("E161").
				WithDetailf("%s %s", f.Method, f.URL).
				Wrap(stderrors.New(res.frame.Error))
		}
		return nil
	}
}

func (s *Server) forget(id uint64) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// reply writes f to the connected runtime, if any.
func (s *Server) reply(f Frame) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		_ = s.writeTo(conn, f)
	}
}

func (s *Server) writeTo(conn *websocket.Conn, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	s.writeMu.Unlock()

	if err != nil {
		s.logger.Error("websocket write failed", "error", err)
		s.metrics.RecordWebSocketError("write")
		return err
	}
	s.metrics.RecordFrame("out", string(f.Type))
	return nil
}

// PagesHandler serves the page stack of ps as JSON.
func PagesHandler(ps host.PageStack, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages := ps.CurrentPages()
		out := make([]host.StaticPage, len(pages))
		for i, p := range pages {
			out[i] = host.StaticPage{RoutePath: p.Route(), Full: p.FullPath()}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			logger.Error("encode pages failed", "error", err)
		}
	}
}

// Close disconnects the runtime, if any.
func (s *Server) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}
	return conn.Close()
}
