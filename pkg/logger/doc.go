// Package logger builds the application's slog logger: JSON in production,
// text elsewhere, tagged with the environment.
package logger
