package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// QueryLogger routes GORM's query trace through zap. Every stock
// mutation runs inside a transaction, so the trace is the cheapest way
// to see which movement held a row lock for too long.
type QueryLogger struct {
	log           *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	skipNotFound  bool
}

// QueryLoggerOption configures a QueryLogger.
type QueryLoggerOption func(*QueryLogger)

// WithSlowQueryThreshold overrides the latency above which a query is
// logged as slow.
func WithSlowQueryThreshold(threshold time.Duration) QueryLoggerOption {
	return func(l *QueryLogger) {
		l.slowThreshold = threshold
	}
}

// WithNotFoundLogging re-enables logging of ErrRecordNotFound, which is
// suppressed by default because lookup misses are ordinary control flow
// here (absent stock rows, unknown SKUs).
func WithNotFoundLogging() QueryLoggerOption {
	return func(l *QueryLogger) {
		l.skipNotFound = false
	}
}

// NewQueryLogger builds a GORM logger writing through the given zap
// logger under the "db" component.
func NewQueryLogger(base *zap.Logger, level gormlogger.LogLevel, opts ...QueryLoggerOption) *QueryLogger {
	ql := &QueryLogger{
		log:           base.Named("db"),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
		skipNotFound:  true,
	}
	for _, opt := range opts {
		opt(ql)
	}
	return ql
}

// LogMode implements gormlogger.Interface.
func (l *QueryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface.
func (l *QueryLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements gormlogger.Interface.
func (l *QueryLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements gormlogger.Interface.
func (l *QueryLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs each executed statement with its latency and row count,
// tagged with the request that issued it when one is on the context.
func (l *QueryLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	took := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("took", took),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}

	switch {
	case err != nil && l.level >= gormlogger.Error:
		if l.skipNotFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return
		}
		l.log.Error("query failed", append(fields, zap.Error(err))...)

	case l.slowThreshold > 0 && took > l.slowThreshold && l.level >= gormlogger.Warn:
		l.log.Warn("slow query", append(fields, zap.Duration("threshold", l.slowThreshold))...)

	case l.level >= gormlogger.Info:
		l.log.Debug("query", fields...)
	}
}

// QueryLogLevel maps the service log level onto GORM's. Debug turns the
// full query trace on; anything else keeps it to warnings and errors.
func QueryLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
