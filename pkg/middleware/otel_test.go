package middleware

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/vango-dev/uniroute/pkg/host"
)

func hostBack(delta int) host.BackOptions { return host.BackOptions{Delta: delta} }

type recordedSpan struct {
	noop.Span
	name   string
	kind   trace.SpanKind
	attrs  map[attribute.Key]attribute.Value
	status codes.Code
	errs   []error
	ended  bool
}

func (s *recordedSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordedSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordedSpan) End(...trace.SpanEndOption) { s.ended = true }

type recordingTracer struct {
	noop.Tracer
	spans []*recordedSpan
}

func (r *recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordedSpan{name: name, kind: cfg.SpanKind(), attrs: map[attribute.Key]attribute.Value{}}
	for _, kv := range cfg.Attributes() {
		s.attrs[kv.Key] = kv.Value
	}
	r.spans = append(r.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingProvider struct {
	noop.TracerProvider
	tracer *recordingTracer
	name   string
}

func (p *recordingProvider) Tracer(name string, _ ...trace.TracerOption) trace.Tracer {
	p.name = name
	return p.tracer
}

func newRecordingProvider() *recordingProvider {
	return &recordingProvider{tracer: &recordingTracer{}}
}

func TestOpenTelemetry_SpanPerNavigation(t *testing.T) {
	tp := newRecordingProvider()
	stub := &stubHost{}
	nav := Chain(stub, OpenTelemetry(
		WithTracerProvider(tp),
		WithTracerName("shop-app"),
		WithAttributeExtractor(func(Call) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))

	if err := nav.NavigateTo(context.Background(), "/pages/a?id=1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tp.name != "shop-app" {
		t.Errorf("tracer name = %q", tp.name)
	}
	if len(tp.tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tp.tracer.spans))
	}
	s := tp.tracer.spans[0]
	if s.name != "uniroute.navigateTo" {
		t.Errorf("span name = %q", s.name)
	}
	if s.kind != trace.SpanKindClient {
		t.Errorf("span kind = %v", s.kind)
	}
	if got := s.attrs["uniroute.url"].AsString(); got != "/pages/a?id=1" {
		t.Errorf("uniroute.url = %q", got)
	}
	if got := s.attrs["test.attr"].AsString(); got != "ok" {
		t.Errorf("test.attr = %q", got)
	}
	if s.status != codes.Ok || !s.ended {
		t.Errorf("status=%v ended=%v", s.status, s.ended)
	}

	if trace.SpanFromContext(stub.ctxs[0]) != trace.Span(s) {
		t.Error("wrapped primitive did not receive the span context")
	}
}

func TestOpenTelemetry_BackAttributes(t *testing.T) {
	tp := newRecordingProvider()
	nav := Chain(&stubHost{}, OpenTelemetry(WithTracerProvider(tp)))

	_ = nav.NavigateBack(context.Background(), host.BackOptions{Delta: 2, AnimationType: "pop-out"})

	s := tp.tracer.spans[0]
	if s.name != "uniroute.navigateBack" {
		t.Errorf("span name = %q", s.name)
	}
	if got := s.attrs["uniroute.delta"].AsInt64(); got != 2 {
		t.Errorf("uniroute.delta = %d", got)
	}
	if got := s.attrs["uniroute.animation"].AsString(); got != "pop-out" {
		t.Errorf("uniroute.animation = %q", got)
	}
	if _, ok := s.attrs["uniroute.url"]; ok {
		t.Error("navigateBack span should not carry a url")
	}
}

func TestOpenTelemetry_ErrorRecorded(t *testing.T) {
	tp := newRecordingProvider()
	wantErr := errors.New("boom")
	nav := Chain(&stubHost{err: wantErr}, OpenTelemetry(WithTracerProvider(tp)))

	err := nav.RedirectTo(context.Background(), "/x")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected error %v, got %v", wantErr, err)
	}

	s := tp.tracer.spans[0]
	if s.status != codes.Error {
		t.Errorf("status = %v, want Error", s.status)
	}
	if len(s.errs) != 1 || s.errs[0] != wantErr {
		t.Errorf("recorded errors = %v", s.errs)
	}
}

func TestOpenTelemetry_FilterSkipsTracing(t *testing.T) {
	tp := newRecordingProvider()
	stub := &stubHost{}
	nav := Chain(stub, OpenTelemetry(
		WithTracerProvider(tp),
		WithNavigationFilter(func(c Call) bool { return c.Method != "switchTab" }),
	))

	_ = nav.SwitchTab(context.Background(), "/tab")
	if len(tp.tracer.spans) != 0 {
		t.Errorf("filtered navigation produced %d spans", len(tp.tracer.spans))
	}
	if len(stub.calls) != 1 {
		t.Error("filtered navigation was not forwarded")
	}
}
