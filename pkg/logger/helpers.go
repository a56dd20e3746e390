package logger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// LogRequest logs HTTP request information
func LogRequest(log Logger, method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		log.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		log.WarnWithFields("HTTP request server error", fields)
	default:
		log.DebugWithFields("HTTP request client error", fields)
	}
}

// LogFetch logs the outcome of one media fetch
func LogFetch(log Logger, postID, strategy, outcome string, files int, err error) {
	entry := log.WithFields(map[string]interface{}{
		"post_id":  postID,
		"strategy": strategy,
		"outcome":  outcome,
		"files":    files,
	})

	if err != nil {
		entry.WithError(err).Error("Media fetch failed")
		return
	}
	entry.Debug("Media fetch finished")
}

// LogRateLimit logs rate limiting events
func LogRateLimit(log Logger, url string, attempt int, delay fmt.Stringer) {
	log.WithFields(map[string]interface{}{
		"url":     url,
		"attempt": attempt,
		"delay":   delay.String(),
		"action":  "rate_limited",
	}).Warn("Rate limited, backing off")
}

// LogProgress logs archive progress
func LogProgress(log Logger, stage string, processed, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(processed) / float64(total) * 100
	}

	log.WithFields(map[string]interface{}{
		"stage":      stage,
		"processed":  processed,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Info("Archive progress")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing (useful for testing)
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) Fatal(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) FatalWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	nop := zerolog.Nop()
	return &nop
}
