// Package logger builds slog loggers and provides attribute helpers for the
// values this client logs most: users, photos, comments, API calls and errors.
//
// # Basic Usage
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithFormat(logger.FormatText),
//	)
//
//	log.Info("photos loaded",
//		logger.UserID(userID),
//		logger.Count("photos", len(photos)),
//		logger.Elapsed(start),
//	)
//
// Components accept a *slog.Logger through their options and fall back to
// Discard when none is given.
//
// # Nil Safety
//
// Helpers return an empty slog.Attr for empty input, so calls such as
// log.Warn("request failed", logger.Error(err)) need no nil checks; slog drops
// empty attributes.
package logger
