// Package logger builds configured slog.Logger instances with sane
// defaults for production (JSON, info) and development (text, debug).
package logger
