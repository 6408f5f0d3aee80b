package query

import (
	"log/slog"
	"time"

	"docsearch/internal/index"
)

var _ Service = (*loggingMiddleware)(nil)

type loggingMiddleware struct {
	logger  *slog.Logger
	service Service
}

// LoggingMiddleware logs every search at debug level.
func LoggingMiddleware(service Service, logger *slog.Logger) Service {
	return &loggingMiddleware{logger: logger, service: service}
}

func (lm *loggingMiddleware) Search(text string) (hits []index.Entry) {
	defer func(begin time.Time) {
		lm.logger.Debug("Search completed",
			slog.String("duration", time.Since(begin).String()),
			slog.String("text", text),
			slog.Int("hits", len(hits)),
		)
	}(time.Now())

	return lm.service.Search(text)
}
