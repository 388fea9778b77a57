package navigator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/query"
)

type call struct {
	method string
	url    string
	back   host.BackOptions
}

// recordingNav captures every primitive call and returns err.
type recordingNav struct {
	calls []call
	err   error
}

func (r *recordingNav) NavigateTo(_ context.Context, url string) error {
	r.calls = append(r.calls, call{method: "navigateTo", url: url})
	return r.err
}

func (r *recordingNav) RedirectTo(_ context.Context, url string) error {
	r.calls = append(r.calls, call{method: "redirectTo", url: url})
	return r.err
}

func (r *recordingNav) ReLaunch(_ context.Context, url string) error {
	r.calls = append(r.calls, call{method: "reLaunch", url: url})
	return r.err
}

func (r *recordingNav) SwitchTab(_ context.Context, url string) error {
	r.calls = append(r.calls, call{method: "switchTab", url: url})
	return r.err
}

func (r *recordingNav) NavigateBack(_ context.Context, opts host.BackOptions) error {
	r.calls = append(r.calls, call{method: "navigateBack", back: opts})
	return r.err
}

func (r *recordingNav) last(t *testing.T) call {
	t.Helper()
	if len(r.calls) == 0 {
		t.Fatal("no host call recorded")
	}
	return r.calls[len(r.calls)-1]
}

func TestNavigator_QueryMethods(t *testing.T) {
	ctx := context.Background()
	target := Target{URL: "/pages/detail/index", Query: query.Map{"id": "1"}}

	tests := []struct {
		name   string
		invoke func(n *Navigator) error
		method string
	}{
		{"NavigateTo", func(n *Navigator) error { return n.NavigateTo(ctx, target) }, "navigateTo"},
		{"Push", func(n *Navigator) error { return n.Push(ctx, target) }, "navigateTo"},
		{"RedirectTo", func(n *Navigator) error { return n.RedirectTo(ctx, target) }, "redirectTo"},
		{"Replace", func(n *Navigator) error { return n.Replace(ctx, target) }, "redirectTo"},
		{"ReLaunch", func(n *Navigator) error { return n.ReLaunch(ctx, target) }, "reLaunch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingNav{}
			if err := tt.invoke(New(rec)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := rec.last(t)
			if got.method != tt.method {
				t.Errorf("method: got %s, want %s", got.method, tt.method)
			}
			if got.url != "/pages/detail/index?id=1" {
				t.Errorf("url: got %q", got.url)
			}
		})
	}
}

func TestNavigator_QueryShapes(t *testing.T) {
	q := query.Values{}
	q.Set("b", "x y")
	q.Set("a", 2)

	tests := []struct {
		name  string
		query query.Source
		want  string
	}{
		{"nil", nil, "/p"},
		{"empty", query.Values{}, "/p"},
		{"ordered", q, "/p?b=x%20y&a=2"},
		{"raw", query.Raw("a=1"), "/p?a=1"},
		{"raw empty", query.Raw(""), "/p?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingNav{}
			_ = New(rec).NavigateTo(context.Background(), Target{URL: "/p", Query: tt.query})
			if got := rec.last(t).url; got != tt.want {
				t.Errorf("url: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNavigator_SwitchTabIgnoresQuery(t *testing.T) {
	rec := &recordingNav{}
	err := New(rec).SwitchTab(context.Background(), Target{
		URL:   "/pages/home/index",
		Query: query.Map{"id": 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := rec.last(t)
	if got.method != "switchTab" || got.url != "/pages/home/index" {
		t.Errorf("got %+v", got)
	}
}

func TestNavigator_Back(t *testing.T) {
	rec := &recordingNav{}
	nav := New(rec)

	if err := nav.Back(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.last(t).back; got != (host.BackOptions{Delta: 1}) {
		t.Errorf("Back(): got %+v, want delta 1", got)
	}

	_ = nav.Back(context.Background(), WithAnimation("pop-out"), WithAnimationDuration(200*time.Millisecond))
	want := host.BackOptions{Delta: 1, AnimationType: "pop-out", AnimationDuration: 200 * time.Millisecond}
	if got := rec.last(t).back; got != want {
		t.Errorf("Back(opts): got %+v, want %+v", got, want)
	}
}

func TestNavigator_Go(t *testing.T) {
	rec := &recordingNav{}
	if err := New(rec).Go(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := rec.last(t)
	if got.method != "navigateBack" || got.back != (host.BackOptions{Delta: 3}) {
		t.Errorf("Go(3): got %+v", got)
	}
}

func TestNavigator_NavigateBackPassesOptions(t *testing.T) {
	rec := &recordingNav{}
	opts := host.BackOptions{Delta: 2, AnimationType: "fade-out", AnimationDuration: time.Second}
	_ = New(rec).NavigateBack(context.Background(), opts)
	if got := rec.last(t).back; got != opts {
		t.Errorf("got %+v, want %+v", got, opts)
	}
}

func TestNavigator_ErrorsPassThrough(t *testing.T) {
	sentinel := errors.New("host failed")
	rec := &recordingNav{err: sentinel}
	nav := New(rec)
	ctx := context.Background()

	errs := []error{
		nav.NavigateTo(ctx, Target{URL: "/a"}),
		nav.RedirectTo(ctx, Target{URL: "/a"}),
		nav.ReLaunch(ctx, Target{URL: "/a"}),
		nav.SwitchTab(ctx, Target{URL: "/a"}),
		nav.Back(ctx),
		nav.Go(ctx, 2),
	}
	for i, err := range errs {
		if err != sentinel {
			t.Errorf("call %d: got %v, want the host error unchanged", i, err)
		}
	}
}

func TestNavigator_NoURLValidation(t *testing.T) {
	rec := &recordingNav{}
	_ = New(rec).NavigateTo(context.Background(), Target{URL: "relative/page"})
	if got := rec.last(t).url; got != "relative/page" {
		t.Errorf("url: got %q", got)
	}
}

func TestURL(t *testing.T) {
	if got := URL(Target{URL: "/x", Query: query.Map{"k": "a&b"}}); got != "/x?k=a%26b" {
		t.Errorf("URL: got %q", got)
	}
}
