// Package logger provides the structured logging interface used across redditsave.
//
// It wraps zerolog with a small interface so components receive their logger at
// construction time instead of reaching for a package global:
//
//	log, err := logger.New(&cfg.Logging)
//	if err != nil {
//	    return err
//	}
//	log = log.WithField("run_id", runID)
//	dispatcher := media.NewDispatcher(client, extractor, opts, log)
//
// Console output is colored and human oriented. When LoggingConfig.File is set
// every line is also written to a size-rotated file (MaxSize in MB, MaxBackups,
// MaxAge in days, Compress).
//
// Tests use NewNopLogger, or NewTestLogger to assert on what was logged:
//
//	log := logger.NewTestLogger()
//	...
//	assert.True(t, log.HasMessage("Media fetch failed"))
package logger
