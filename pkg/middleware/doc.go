// Package middleware instruments a runtime's navigation primitives.
//
// A Decorator wraps host.Navigation; WrapHost applies decorators to a full
// host.Host while keeping its load hook and page stack:
//
//	h := middleware.WrapHost(memhost.New(cfg),
//	    middleware.OpenTelemetry(middleware.WithTracerName("shop-app")),
//	    middleware.Prometheus(middleware.WithNamespace("shop")),
//	)
//	nav := navigator.New(h)
//
// # OpenTelemetry
//
// Every navigation becomes a client span named "uniroute.<method>" with the
// URL or back delta as attributes. Errors are recorded on the span. The
// tracer comes from the global provider unless WithTracerProvider is given.
//
// # Prometheus Metrics
//
//   - uniroute_navigations_total{method,status}
//   - uniroute_navigation_duration_seconds{method}
//   - uniroute_navigation_errors_total{method,code}
//   - uniroute_bridge_connected
//   - uniroute_bridge_frames_total{direction,type}
//   - uniroute_bridge_websocket_errors_total{type}
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
