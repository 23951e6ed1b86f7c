package middleware

import (
	"context"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/netrequester/packages/http"
)

// Logger logs every exchange: requests at debug, responses at info and
// failures at warn.
type Logger struct {
	logger *zap.Logger
}

// Logging returns a Logger writing to logger, or to zap.L() when nil.
func Logging(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.L()
	}
	return &Logger{logger: logger.Named("http")}
}

func (l *Logger) OnRequest(_ context.Context, req *http.Request) error {
	l.logger.Debug("sending request",
		zap.String("method", req.Method.String()),
		zap.Stringer("url", req.URL),
		zap.Int("body_size", len(req.Body)))
	return nil
}

func (l *Logger) OnResponse(req *http.Request, resp *http.Response) {
	l.logger.Info("received response",
		zap.String("method", req.Method.String()),
		zap.Stringer("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
		zap.Int("body_size", len(resp.Body)))
}

func (l *Logger) OnError(err *http.Error, req *http.Request) {
	fields := []zap.Field{zap.Stringer("kind", err.Kind), zap.Error(err)}
	if err.Kind == http.KindRejected {
		fields = append(fields, zap.Int("status", err.Status.Code()))
	}
	if req != nil {
		fields = append(fields,
			zap.String("method", req.Method.String()),
			zap.Stringer("url", req.URL))
	}
	l.logger.Warn("request failed", fields...)
}
