// Copyright © 2024 The ELPS authors

package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/minischeme/lisp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context key.
type contextKey string

// ContextOpenTelemetryTracerKey is the context key holding the name of the
// tracer used for spans.
const ContextOpenTelemetryTracerKey = contextKey("otelParentTracer")

// DefaultTracerName names the tracer when the context does not specify one.
const DefaultTracerName = "minischeme"

// BuiltinAttributeKey marks spans of builtin operator calls.
const BuiltinAttributeKey = attribute.Key("scheme.builtin")

var _ lisp.Profiler = &otelAnnotator{}

type otelAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    trace.Span
}

// NewOpenTelemetryAnnotator returns a profiler that creates an
// OpenTelemetry span for each traced call, nested under the span in
// parentContext.
func NewOpenTelemetryAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) *otelAnnotator {
	p := &otelAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.currentContext == nil {
		return errors.New("we can only append spans to a context that is linked to opentelemetry")
	}
	return p.profiler.Enable()
}

func (p *otelAnnotator) Complete() error {
	if p.currentSpan != nil {
		p.currentSpan.End()
	}
	return nil
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = DefaultTracerName
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (p *otelAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	oldContext := p.currentContext
	prettyLabel, name := p.prettyFunName(fun)
	var span trace.Span
	p.currentContext, span = contextTracer(p.currentContext).Start(p.currentContext, prettyLabel)
	p.currentSpan = span
	p.addCodeAttributes(span, fun, name)
	return func() {
		span.End()
		// And pop the current context back
		p.currentContext = oldContext
		p.currentSpan = nil
	}
}

func (p *otelAnnotator) addCodeAttributes(span trace.Span, fun *lisp.LVal, name string) {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(name),
		BuiltinAttributeKey.Bool(isBuiltin(fun)),
	}
	if loc := getSourceLoc(fun); loc != nil {
		attrs = append(attrs,
			semconv.CodeColumn(loc.Col),
			semconv.CodeFilepath(loc.File),
			semconv.CodeLineNumber(loc.Line),
		)
	}
	span.SetAttributes(attrs...)
}
