package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// ============================================================================
// Errors
// ============================================================================

// Error creates an attribute for a single error under the key "error".
// Returns an empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors", keyed by their position.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// ErrorKind records the classification of a failed call.
func ErrorKind(kind string) slog.Attr {
	if kind == "" {
		return slog.Attr{}
	}
	return slog.String("error_kind", kind)
}

// ============================================================================
// Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Elapsed records the time passed since start.
func Elapsed(start time.Time) slog.Attr {
	return slog.Duration("elapsed", time.Since(start))
}

// ============================================================================
// Domain identifiers
// ============================================================================

func id(key, v string) slog.Attr {
	if v == "" {
		return slog.Attr{}
	}
	return slog.String(key, v)
}

// UserID creates an attribute for a user id.
func UserID(v string) slog.Attr { return id("user_id", v) }

// PhotoID creates an attribute for a photo id.
func PhotoID(v string) slog.Attr { return id("photo_id", v) }

// CommentID creates an attribute for a comment id.
func CommentID(v string) slog.Attr { return id("comment_id", v) }

// ParentID creates an attribute for a parent comment id.
func ParentID(v string) slog.Attr { return id("parent_id", v) }

// RequestID creates an attribute for an outbound request id.
func RequestID(v string) slog.Attr { return id("request_id", v) }

// FileName creates an attribute for an image file name.
func FileName(v string) slog.Attr { return id("file_name", v) }

// ============================================================================
// HTTP
// ============================================================================

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// URL creates an attribute for a full URL.
func URL(u string) slog.Attr {
	return id("url", u)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	if code == 0 {
		return slog.Attr{}
	}
	return slog.Int("status_code", code)
}

// ============================================================================
// Metadata
// ============================================================================

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Operation creates an attribute for the operation being performed.
func Operation(op string) slog.Attr {
	return slog.String("op", op)
}

// State creates an attribute for a state machine state.
func State(s string) slog.Attr {
	return slog.String("state", s)
}

// Route creates an attribute for a client route.
func Route(r string) slog.Attr {
	return slog.String("route", r)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Attempt creates an attribute for a 1-based attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Version creates an attribute for a snapshot version.
func Version(v uint64) slog.Attr {
	return slog.Uint64("version", v)
}
