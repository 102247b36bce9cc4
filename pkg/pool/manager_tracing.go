package pool

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingManager wraps Open, Close and GetHandler for one descriptor
// type T in an OpenTelemetry span per call, mirroring how
// NewTracingBuildExecutor in the reference repository decorates a
// single interface method with a span and a handful of attributes.
//
// Go has no generic methods, so there is no way to decorate *Manager
// itself behind a common interface the way BuildExecutor is decorated
// there; TracingManager is instead constructed per descriptor type,
// and call sites that want tracing for that type go through it
// instead of calling the package-level Open/Close/GetHandler
// directly.
type TracingManager[T any] struct {
	manager *Manager
	trait   DescriptorTrait[T]
	tracer  trace.Tracer
}

// NewTracingManager creates a TracingManager delegating to manager
// for every operation on descriptors of type T opened through trait.
func NewTracingManager[T any](manager *Manager, trait DescriptorTrait[T], tracerProvider trace.TracerProvider) *TracingManager[T] {
	return &TracingManager[T]{
		manager: manager,
		trait:   trait,
		tracer:  tracerProvider.Tracer("github.com/buildbarn/bb-fdpool/pkg/pool"),
	}
}

// Open behaves like the package-level Open, wrapped in a span named
// "Manager.Open" carrying the path and write flag as attributes.
func (tm *TracingManager[T]) Open(ctx context.Context, path string, write bool, requestClose func(DescriptorID) bool) (DescriptorID, T, error) {
	_, span := tm.tracer.Start(ctx, "Manager.Open", trace.WithAttributes(
		attribute.String("path", path),
		attribute.Bool("write", write),
	))
	defer span.End()

	id, fd, err := Open(tm.manager, tm.trait, path, write, requestClose)
	if err != nil {
		span.RecordError(err)
	}
	return id, fd, err
}

// Close behaves like the package-level Close, wrapped in a span named
// "Manager.Close".
func (tm *TracingManager[T]) Close(ctx context.Context, id DescriptorID, fd T) {
	_, span := tm.tracer.Start(ctx, "Manager.Close")
	defer span.End()
	Close(tm.manager, tm.trait, id, fd)
}

// GetHandler behaves like the package-level GetHandler, wrapped in a
// span named "Manager.GetHandler" carrying the requested path as an
// attribute.
func (tm *TracingManager[T]) GetHandler(ctx context.Context, path string) (*Handler[T], error) {
	_, span := tm.tracer.Start(ctx, "Manager.GetHandler", trace.WithAttributes(
		attribute.String("path", path),
	))
	defer span.End()

	handler, err := GetHandler(tm.manager, path, tm.trait)
	if err != nil {
		span.RecordError(err)
	}
	return handler, err
}
