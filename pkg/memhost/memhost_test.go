package memhost

import (
	"context"
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/vango-dev/uniroute/internal/config"
	"github.com/vango-dev/uniroute/internal/errors"
	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/navigator"
	"github.com/vango-dev/uniroute/pkg/query"
	"github.com/vango-dev/uniroute/pkg/route"
)

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Pages = []config.PageConfig{
		{Path: "pages/home/index"},
		{Path: "pages/list/index"},
		{Path: "pages/detail/index"},
		{Path: "pages/mine/index"},
	}
	cfg.TabBar.List = []config.TabItem{
		{PagePath: "pages/home/index"},
		{PagePath: "pages/mine/index"},
	}
	return cfg
}

func routes(h *Host) []string {
	var out []string
	for _, p := range h.CurrentPages() {
		out = append(out, p.Route())
	}
	return out
}

func launched(t *testing.T) *Host {
	t.Helper()
	h := New(testConfig())
	if err := h.Launch(context.Background()); err != nil {
		t.Fatalf("Launch() error: %v", err)
	}
	return h
}

func TestLaunch(t *testing.T) {
	h := launched(t)
	if got := routes(h); !reflect.DeepEqual(got, []string{"pages/home/index"}) {
		t.Fatalf("stack = %v", got)
	}
	if p := host.CurrentPage(h); p.FullPath() != "/pages/home/index" {
		t.Errorf("FullPath = %q", p.FullPath())
	}
}

func TestNavigateTo(t *testing.T) {
	h := launched(t)
	ctx := context.Background()

	if err := h.NavigateTo(ctx, "/pages/detail/index?id=42&q=a%20b"); err != nil {
		t.Fatalf("NavigateTo error: %v", err)
	}
	if got := routes(h); !reflect.DeepEqual(got, []string{"pages/home/index", "pages/detail/index"}) {
		t.Fatalf("stack = %v", got)
	}
	if p := host.CurrentPage(h); p.FullPath() != "/pages/detail/index?id=42&q=a%20b" {
		t.Errorf("FullPath = %q", p.FullPath())
	}
}

func TestNavigateTo_Errors(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		url  string
		code string
	}{
		{"unregistered", "/pages/none/index", "E101"},
		{"tab page", "/pages/mine/index", "E103"},
		{"relative", "pages/detail/index", "E106"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := launched(t)
			err := h.NavigateTo(ctx, tt.url)
			if errors.CodeOf(err) != tt.code {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if len(h.CurrentPages()) != 1 {
				t.Errorf("stack changed on error: %v", routes(h))
			}
		})
	}
}

func TestNavigateTo_StackLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxPages = 3
	h := New(cfg)
	ctx := context.Background()
	_ = h.Launch(ctx)

	for i := 0; i < 2; i++ {
		if err := h.NavigateTo(ctx, "/pages/detail/index"); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	err := h.NavigateTo(ctx, "/pages/detail/index")
	if !stderrors.Is(err, errors.New("E104")) {
		t.Fatalf("error = %v, want E104", err)
	}
}

func TestRedirectTo(t *testing.T) {
	h := launched(t)
	ctx := context.Background()
	_ = h.NavigateTo(ctx, "/pages/list/index")

	if err := h.RedirectTo(ctx, "/pages/detail/index?id=1"); err != nil {
		t.Fatalf("RedirectTo error: %v", err)
	}
	if got := routes(h); !reflect.DeepEqual(got, []string{"pages/home/index", "pages/detail/index"}) {
		t.Fatalf("stack = %v", got)
	}
	if err := h.RedirectTo(ctx, "/pages/home/index"); errors.CodeOf(err) != "E103" {
		t.Fatalf("RedirectTo(tab) error = %v, want E103", err)
	}
}

func TestReLaunch(t *testing.T) {
	h := launched(t)
	ctx := context.Background()
	_ = h.NavigateTo(ctx, "/pages/list/index")
	_ = h.NavigateTo(ctx, "/pages/detail/index")

	if err := h.ReLaunch(ctx, "/pages/detail/index?id=9"); err != nil {
		t.Fatalf("ReLaunch error: %v", err)
	}
	if got := routes(h); !reflect.DeepEqual(got, []string{"pages/detail/index"}) {
		t.Fatalf("stack = %v", got)
	}
}

func TestSwitchTab(t *testing.T) {
	h := launched(t)
	ctx := context.Background()
	_ = h.NavigateTo(ctx, "/pages/detail/index")

	loads := 0
	h.OnLoad(func(map[string]string) error { loads++; return nil })

	if err := h.SwitchTab(ctx, "/pages/mine/index?ignored=1"); err != nil {
		t.Fatalf("SwitchTab error: %v", err)
	}
	if got := routes(h); !reflect.DeepEqual(got, []string{"pages/mine/index"}) {
		t.Fatalf("stack = %v", got)
	}
	if p := host.CurrentPage(h); p.FullPath() != "/pages/mine/index" {
		t.Errorf("FullPath = %q, want query dropped", p.FullPath())
	}
	if loads != 1 {
		t.Errorf("first switch should load, got %d loads", loads)
	}

	h.OnLoad(func(map[string]string) error { loads++; return nil })
	_ = h.SwitchTab(ctx, "/pages/home/index")
	_ = h.SwitchTab(ctx, "/pages/mine/index")
	if loads != 1 {
		t.Errorf("home was loaded by Launch and mine already loaded; got %d loads", loads)
	}

	if err := h.SwitchTab(ctx, "/pages/detail/index"); !stderrors.Is(err, errors.New("E102")) {
		t.Fatalf("SwitchTab(non-tab) error = %v, want E102", err)
	}
}

func TestNavigateBack(t *testing.T) {
	ctx := context.Background()

	t.Run("single page", func(t *testing.T) {
		h := launched(t)
		err := h.NavigateBack(ctx, host.BackOptions{Delta: 1})
		if errors.CodeOf(err) != "E105" {
			t.Fatalf("error = %v, want E105", err)
		}
	})

	t.Run("delta", func(t *testing.T) {
		h := launched(t)
		_ = h.NavigateTo(ctx, "/pages/list/index")
		_ = h.NavigateTo(ctx, "/pages/detail/index")
		_ = h.NavigateTo(ctx, "/pages/detail/index")

		if err := h.NavigateBack(ctx, host.BackOptions{Delta: 2}); err != nil {
			t.Fatalf("NavigateBack error: %v", err)
		}
		if got := routes(h); !reflect.DeepEqual(got, []string{"pages/home/index", "pages/list/index"}) {
			t.Fatalf("stack = %v", got)
		}
	})

	t.Run("zero delta pops one", func(t *testing.T) {
		h := launched(t)
		_ = h.NavigateTo(ctx, "/pages/list/index")
		_ = h.NavigateBack(ctx, host.BackOptions{})
		if len(h.CurrentPages()) != 1 {
			t.Fatalf("stack = %v", routes(h))
		}
	})

	t.Run("delta past bottom", func(t *testing.T) {
		h := launched(t)
		_ = h.NavigateTo(ctx, "/pages/list/index")
		_ = h.NavigateBack(ctx, host.BackOptions{Delta: 99})
		if got := routes(h); !reflect.DeepEqual(got, []string{"pages/home/index"}) {
			t.Fatalf("stack = %v", got)
		}
	})
}

func TestCanceledContext(t *testing.T) {
	h := launched(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.NavigateTo(ctx, "/pages/list/index"); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("NavigateTo error = %v, want context.Canceled", err)
	}
	if err := h.NavigateBack(ctx, host.BackOptions{Delta: 1}); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("NavigateBack error = %v, want context.Canceled", err)
	}
}

func TestOnLoad_OncePerPage(t *testing.T) {
	h := launched(t)
	ctx := context.Background()

	var got []map[string]string
	h.OnLoad(func(q map[string]string) error {
		got = append(got, q)
		return nil
	})

	_ = h.NavigateTo(ctx, "/pages/detail/index?id=1&name=a%20b")
	_ = h.NavigateTo(ctx, "/pages/list/index")

	if len(got) != 1 {
		t.Fatalf("hook ran %d times, want 1", len(got))
	}
	want := map[string]string{"id": "1", "name": "a%20b"}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("query = %v, want still-encoded %v", got[0], want)
	}
}

func TestOnLoad_NoQueryGivesEmptyMap(t *testing.T) {
	h := launched(t)
	var got map[string]string
	h.OnLoad(func(q map[string]string) error { got = q; return nil })

	_ = h.NavigateTo(context.Background(), "/pages/list/index")
	if got == nil || len(got) != 0 {
		t.Errorf("query = %#v, want empty non-nil map", got)
	}
}

func TestOnLoad_ErrorSurfaces(t *testing.T) {
	h := launched(t)
	boom := stderrors.New("boom")
	h.OnLoad(func(map[string]string) error { return boom })

	err := h.NavigateTo(context.Background(), "/pages/list/index")
	if !stderrors.Is(err, boom) || errors.CodeOf(err) != "E107" {
		t.Fatalf("error = %v, want E107 wrapping boom", err)
	}
}

func TestOnLoad_EveryHookRunsAfterFailure(t *testing.T) {
	h := launched(t)
	first := stderrors.New("first")
	third := stderrors.New("third")
	var ran []int
	h.OnLoad(func(map[string]string) error { ran = append(ran, 1); return first })
	h.OnLoad(func(map[string]string) error { ran = append(ran, 2); return nil })
	h.OnLoad(func(map[string]string) error { ran = append(ran, 3); return third })

	err := h.NavigateTo(context.Background(), "/pages/list/index")
	if !reflect.DeepEqual(ran, []int{1, 2, 3}) {
		t.Errorf("hooks ran %v, want [1 2 3]", ran)
	}
	if !stderrors.Is(err, first) || !stderrors.Is(err, third) {
		t.Errorf("error = %v, want both hook errors", err)
	}
	if errors.CodeOf(err) != "E107" {
		t.Errorf("code = %q, want E107", errors.CodeOf(err))
	}
}

// The following exercise route and navigator on top of the in-memory host.

func TestIntegration_RouteFollowsNavigation(t *testing.T) {
	h := launched(t)
	ctx := context.Background()
	nav := navigator.New(h)

	r := route.Use(h)
	q := query.Values{}
	q.Set("id", "42")
	q.Set("title", "Hello, world & more")

	if err := nav.Push(ctx, navigator.Target{URL: "/pages/detail/index", Query: q}); err != nil {
		t.Fatalf("Push error: %v", err)
	}

	if got, _ := r.Param("id"); got != "42" {
		t.Errorf("id = %q, want 42", got)
	}
	if got, _ := r.Param("title"); got != "Hello, world & more" {
		t.Errorf("title = %q", got)
	}
	if r.Path() != "pages/detail/index" {
		t.Errorf("Path = %q", r.Path())
	}
	if r.FullPath() != "/pages/detail/index?id=42&title=Hello%2C%20world%20%26%20more" {
		t.Errorf("FullPath = %q", r.FullPath())
	}

	// a later page does not touch this route
	_ = nav.Push(ctx, navigator.Target{URL: "/pages/list/index"})
	if r.Path() != "pages/detail/index" {
		t.Errorf("route changed after leaving the page: %q", r.Path())
	}

	if err := nav.Back(ctx); err != nil {
		t.Fatalf("Back error: %v", err)
	}
	if got := host.CurrentPage(h).Route(); got != "pages/detail/index" {
		t.Errorf("current page after Back = %q", got)
	}
	if err := nav.Go(ctx, 1); err != nil {
		t.Fatalf("Go error: %v", err)
	}
	if len(h.CurrentPages()) != 1 {
		t.Errorf("stack after Go(1) = %v", routes(h))
	}
}

func TestIntegration_MalformedQueryFailsNavigation(t *testing.T) {
	h := launched(t)
	r := route.Use(h)

	err := navigator.New(h).Push(context.Background(), navigator.Target{
		URL:   "/pages/detail/index",
		Query: query.Raw("x=%E4"),
	})
	if !stderrors.Is(err, query.ErrMalformed) {
		t.Fatalf("error = %v, want ErrMalformed", err)
	}
	if r.Loaded() {
		t.Error("route should not be loaded after decode failure")
	}
}
