package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "uniroute"

// OTelConfig configures the OpenTelemetry decorator.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "uniroute").
	TracerName string

	// TracerProvider supplies the tracer. If nil, the global provider is used.
	TracerProvider trace.TracerProvider

	// Filter determines which navigations to trace.
	// If nil, all navigations are traced.
	Filter func(call Call) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(call Call) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry decorator.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithNavigationFilter sets a filter function for navigations.
func WithNavigationFilter(filter func(call Call) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(call Call) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates a Decorator that traces every navigation.
//
// The span context is passed down to the wrapped primitive, so a host that
// talks to a remote runtime can propagate it.
//
// Example:
//
//	h := middleware.WrapHost(host, middleware.OpenTelemetry(
//	    middleware.WithTracerName("shop-app"),
//	))
func OpenTelemetry(opts ...OTelOption) Decorator {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(config.TracerName)

	return Intercept(func(ctx context.Context, call Call, invoke func(context.Context) error) error {
		if config.Filter != nil && !config.Filter(call) {
			return invoke(ctx)
		}

		attrs := []attribute.KeyValue{
			attribute.String("uniroute.method", call.Method),
		}
		if call.Method == "navigateBack" {
			attrs = append(attrs, attribute.Int("uniroute.delta", call.Back.Delta))
			if call.Back.AnimationType != "" {
				attrs = append(attrs, attribute.String("uniroute.animation", call.Back.AnimationType))
			}
		} else {
			attrs = append(attrs, attribute.String("uniroute.url", call.URL))
		}
		if config.AttributeExtractor != nil {
			attrs = append(attrs, config.AttributeExtractor(call)...)
		}

		spanCtx, span := tracer.Start(ctx, "uniroute."+call.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		err := invoke(spanCtx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		return err
	})
}
