package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// queryLogger 查询已由 trace 记录 这里只输出失败和慢查询
type queryLogger struct {
	slow time.Duration
}

func (l *queryLogger) LogMode(logger.LogLevel) logger.Interface { return l }

func (l *queryLogger) Info(ctx context.Context, s string, v ...any) {
	slog.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf(s, v...))
}

func (l *queryLogger) Warn(ctx context.Context, s string, v ...any) {
	slog.LogAttrs(ctx, slog.LevelWarn, fmt.Sprintf(s, v...))
}

func (l *queryLogger) Error(ctx context.Context, s string, v ...any) {
	slog.LogAttrs(ctx, slog.LevelError, fmt.Sprintf(s, v...))
}

func (l *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		slog.LogAttrs(ctx, slog.LevelError, "gorm.query",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("latency", elapsed),
			slog.Any("err", err),
		)
	case l.slow > 0 && elapsed > l.slow:
		sql, rows := fc()
		slog.LogAttrs(ctx, slog.LevelWarn, "gorm.slowQuery",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("latency", elapsed),
		)
	}
}

// WithSlowThreshold 慢查询阈值 0 不输出慢查询
func WithSlowThreshold(d time.Duration) Option {
	return func(db *gorm.DB) error {
		db.Logger = &queryLogger{slow: d}
		return nil
	}
}
