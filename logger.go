package nscache

// Fields is a minimal structured field map for logs.
type Fields map[string]any

// Logger receives failure details from cache operations. Calls are
// fire-and-forget; implementations must not block. Adapters for zap, logrus and
// slog live under log/.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger discards everything. Used when Options.Logger is nil.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}
