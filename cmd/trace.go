// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/luthersystems/minischeme/lisp"
	"github.com/luthersystems/minischeme/lisp/x/profiler"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Values of the trace-backend setting.
const (
	traceOpenTelemetry = "otel"
	traceOpenCensus    = "opencensus"
)

// spanWriter is a SpanExporter that writes one line per finished span.
type spanWriter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ sdktrace.SpanExporter = (*spanWriter)(nil)

func (e *spanWriter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, span := range spans {
		if _, err := fmt.Fprintln(e.w, formatSpan(span)); err != nil {
			return err
		}
	}
	return nil
}

func (e *spanWriter) Shutdown(context.Context) error {
	return nil
}

// formatSpan renders "trace: NAME DURATION key=value..." with attributes
// sorted by key.
func formatSpan(span sdktrace.ReadOnlySpan) string {
	var b strings.Builder
	b.WriteString("trace: ")
	b.WriteString(span.Name())
	b.WriteString(" ")
	b.WriteString(span.EndTime().Sub(span.StartTime()).String())
	attrs := append([]attribute.KeyValue(nil), span.Attributes()...)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	for _, kv := range attrs {
		fmt.Fprintf(&b, " %s=%s", kv.Key, kv.Value.Emit())
	}
	return b.String()
}

// censusWriter is the OpenCensus counterpart of spanWriter.  The
// annotator records source attributes on a span annotation, so those are
// written in place of span attributes.
type censusWriter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ octrace.Exporter = (*censusWriter)(nil)

func (e *censusWriter) ExportSpan(sd *octrace.SpanData) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.w, formatSpanData(sd)) //nolint:errcheck // best-effort output
}

func formatSpanData(sd *octrace.SpanData) string {
	var b strings.Builder
	b.WriteString("trace: ")
	b.WriteString(sd.Name)
	b.WriteString(" ")
	b.WriteString(sd.EndTime.Sub(sd.StartTime).String())
	attrs := make(map[string]interface{}, len(sd.Attributes))
	for k, v := range sd.Attributes {
		attrs[k] = v
	}
	for _, a := range sd.Annotations {
		for k, v := range a.Attributes {
			attrs[k] = v
		}
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, attrs[k])
	}
	return b.String()
}

// enableTrace installs a tracing annotator on env which writes a line to w
// for every lambda and builtin call.  The returned function flushes the
// tracer and must be called when evaluation is done.
func enableTrace(env *lisp.LEnv, backend string, w io.Writer) (func() error, error) {
	switch backend {
	case "", traceOpenTelemetry:
		return enableOpenTelemetry(env, w)
	case traceOpenCensus:
		return enableOpenCensus(env, w)
	}
	return nil, fmt.Errorf("unknown trace backend: %q", backend)
}

func enableOpenCensus(env *lisp.LEnv, w io.Writer) (func() error, error) {
	exporter := &censusWriter{w: w}
	octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
	octrace.RegisterExporter(exporter)
	p := profiler.NewOpenCensusAnnotator(env.Runtime, context.Background(), profiler.WithSourceLabeler())
	if err := p.Enable(); err != nil {
		octrace.UnregisterExporter(exporter)
		return nil, err
	}
	return func() error {
		defer octrace.UnregisterExporter(exporter)
		return p.Complete()
	}, nil
}

func enableOpenTelemetry(env *lisp.LEnv, w io.Writer) (func() error, error) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(&spanWriter{w: w}))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	ctx := context.WithValue(context.Background(), profiler.ContextOpenTelemetryTracerKey, profiler.DefaultTracerName)
	p := profiler.NewOpenTelemetryAnnotator(env.Runtime, ctx, profiler.WithSourceLabeler())
	if err := p.Enable(); err != nil {
		otel.SetTracerProvider(prev)
		return nil, err
	}
	return func() error {
		defer otel.SetTracerProvider(prev)
		if err := p.Complete(); err != nil {
			return err
		}
		return tp.Shutdown(context.Background())
	}, nil
}
