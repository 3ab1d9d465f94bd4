package trace

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	sentryotel "github.com/getsentry/sentry-go/otel"
	"github.com/pterm/pterm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/airbytehq/oauthflow/internal/build"
)

const tracerName = "github.com/airbytehq/oauthflow/trace"

var (
	once   sync.Once
	tracer trace.Tracer
)

// NewSpan starts a span on the global tracer provider. Without Init it is a no-op span.
func NewSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	once.Do(func() {
		tracer = otel.Tracer(tracerName)
	})
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// SpanError records err on span and reports it.
func SpanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, scrub(err.Error()))
	sentry.CaptureException(err)
	return err
}

func CaptureError(ctx context.Context, err error) error {
	return SpanError(trace.SpanFromContext(ctx), err)
}

type Shutdown func()

// Options configure error reporting. An empty DSN keeps spans local and reports nothing.
type Options struct {
	DSN         string
	Environment string
	DoNotTrack  bool
}

func Init(ctx context.Context, opts Options) ([]Shutdown, error) {
	dsn := opts.DSN
	if opts.DoNotTrack {
		pterm.Debug.Println("Tracing is disabled")
		dsn = ""
	}

	env := opts.Environment
	if env == "" {
		env = "dev"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    dsn != "",
		Environment:      env,
		Release:          build.Version,
		TracesSampleRate: 1.0,
		// ServerName can be considered PII, hardcode to N/A
		ServerName:            "N/A",
		BeforeSend:            removePII,
		BeforeSendTransaction: removePII,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to initialize sentry: %w", err)
	}

	cleanups := []Shutdown{func() { sentry.Flush(2 * time.Second) }}

	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(build.Name),
			attribute.String("version", build.Version),
		),
	)
	if err != nil {
		return cleanups, fmt.Errorf("unable to build trace resource: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sentryotel.NewSentrySpanProcessor()),
		sdktrace.WithResource(r),
	)
	cleanups = append(cleanups, func() { _ = tracerProvider.Shutdown(ctx) })

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(sentryotel.NewSentryPropagator())

	return cleanups, nil
}

// userHome is the redacted user home directory
const userHome = "[USER_HOME]"

var home, _ = os.UserHomeDir()

func scrub(s string) string {
	if home == "" {
		return s
	}
	return strings.ReplaceAll(s, home, userHome)
}

// removePII removes potentially PII information that may be contained within the trace data.
func removePII(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.Message = scrub(event.Message)

	for i := range event.Exception {
		event.Exception[i].Value = scrub(event.Exception[i].Value)
	}

	for _, span := range event.Spans {
		span.Name = scrub(span.Name)
		span.Description = scrub(span.Description)
	}

	// request bodies and headers may carry codes, verifiers or tokens
	if event.Request != nil {
		event.Request.Data = ""
		event.Request.Headers = nil
		event.Request.Cookies = ""
		event.Request.QueryString = ""
	}

	return event
}
