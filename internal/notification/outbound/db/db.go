// Package db is the postgres-backed delivery log store.
package db

import (
	"context"
	"errors"
	"time"

	"github.com/fanoutlabs/herald/internal/pkg/goerror"
	"github.com/fanoutlabs/herald/internal/pkg/instrument"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DB persists delivery log entries in the notification_delivery_logs table.
//
// The failure path of UpdateOutcome applies the linear backoff rule in SQL:
// retry_count increments and next_retry_at moves out by backoff * new count.
type DB struct {
	conn     *pgxpool.Pool
	ins      instrument.Instrumentation
	backoff  time.Duration
	maxRetry int32
}

// NewDB constructs the store. backoff is the linear backoff unit used when
// an attempt fails; maxRetry is the retry ceiling reports classify
// terminal failures against.
func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation, backoff time.Duration, maxRetry int32) *DB {
	return &DB{conn: conn, ins: ins, backoff: backoff, maxRetry: maxRetry}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
