package staffgate

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/starwalkn/staffgate/internal/metric"
)

const tracerName = "github.com/starwalkn/staffgate"

const (
	defaultMaxAttempts     = 3
	defaultInitialInterval = 2 * time.Second
	defaultMaxInterval     = 30 * time.Second
	defaultJitter          = 0.5
)

// RetryPolicy bounds the exponential backoff between upstream attempts.
// The wait before retry n is InitialInterval * 2^(n-1), scaled by a random
// factor in [1-Jitter, 1+Jitter] and capped at MaxInterval.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	Jitter          float64
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     defaultMaxAttempts,
		InitialInterval: defaultInitialInterval,
		Jitter:          defaultJitter,
		MaxInterval:     defaultMaxInterval,
	}
}

type Retrier struct {
	policy   RetryPolicy
	classify Classifier

	log     *zap.Logger
	metrics metric.Metrics
	tracer  trace.Tracer
}

func NewRetrier(policy RetryPolicy, classify Classifier, log *zap.Logger, metrics metric.Metrics) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	if policy.InitialInterval <= 0 {
		policy.InitialInterval = defaultInitialInterval
	}

	policy.Jitter = math.Min(math.Max(policy.Jitter, 0), 1)

	if classify == nil {
		classify = Classify
	}

	if log == nil {
		log = zap.NewNop()
	}

	if metrics == nil {
		metrics = metric.NewNop()
	}

	return &Retrier{
		policy:   policy,
		classify: classify,
		log:      log,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
	}
}

func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

func (r *Retrier) backoff() retry.Backoff {
	b := retry.NewExponential(r.policy.InitialInterval)

	if pct := uint64(math.Round(r.policy.Jitter * 100)); pct > 0 { //nolint:mnd // percent
		b = retry.WithJitterPercent(pct, b)
	}

	if r.policy.MaxInterval > 0 {
		b = retry.WithCappedDuration(r.policy.MaxInterval, b)
	}

	return retry.WithMaxRetries(uint64(r.policy.MaxAttempts-1), b) //nolint:gosec // MaxAttempts >= 1
}

// Do runs fn until it succeeds, fails with a non-retryable kind or the attempts run out.
// The returned error is always a classified *Error; after exhaustion it is the last failure.
func Do[T any](ctx context.Context, r *Retrier, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		result  T
		last    *Error
		attempt int
	)

	b := r.backoff()
	observed := retry.BackoffFunc(func() (time.Duration, bool) {
		delay, stop := b.Next()
		if stop {
			r.log.Error("all retry attempts failed",
				zap.String("op", op),
				zap.Int("attempts", attempt),
				zap.String("kind", string(last.Kind)),
				zap.Error(last),
			)

			return 0, true
		}

		r.metrics.IncUpstreamRetries(op)
		r.log.Warn("retrying upstream call",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.String("kind", string(last.Kind)),
			zap.Error(last),
		)

		return delay, false
	})

	err := retry.Do(ctx, observed, func(ctx context.Context) error {
		attempt++

		spanCtx, span := r.tracer.Start(ctx, "upstream."+op, trace.WithAttributes(
			attribute.String("upstream.op", op),
			attribute.Int("upstream.attempt", attempt),
		))
		defer span.End()

		res, err := fn(spanCtx)
		if err == nil {
			r.metrics.IncUpstreamRequests(op, "ok")
			result = res

			return nil
		}

		last = r.classify(op, err)

		span.RecordError(last)
		span.SetStatus(codes.Error, string(last.Kind))
		r.metrics.IncUpstreamRequests(op, string(last.Kind))

		if !last.Kind.Retryable() {
			r.log.Error("upstream call failed, not retrying",
				zap.String("op", op),
				zap.Int("attempts", attempt),
				zap.String("kind", string(last.Kind)),
				zap.Error(last),
			)

			return last
		}

		return retry.RetryableError(last)
	})
	if err == nil {
		return result, nil
	}

	var classified *Error
	if !errors.As(err, &classified) {
		// The context ended between attempts; the last upstream failure wins over ctx.Err.
		classified = last
		if classified == nil {
			classified = r.classify(op, err)
		} else {
			r.log.Warn("retry abandoned, context done",
				zap.String("op", op),
				zap.Int("attempts", attempt),
				zap.String("kind", string(last.Kind)),
				zap.NamedError("context", err),
			)
		}
	}

	var zero T

	return zero, classified
}
