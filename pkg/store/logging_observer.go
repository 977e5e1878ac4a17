package store

import "go.uber.org/zap"

// LoggingObserver logs repository events as structured records.
type LoggingObserver struct {
	logger *zap.Logger
}

// NewLoggingObserver wraps a zap logger. A nil logger falls back to zap.NewNop
// so the observer can be wired unconditionally.
func NewLoggingObserver(logger *zap.Logger) *LoggingObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements the Observer interface.
func (lo *LoggingObserver) OnEvent(event Event) {
	fields := []zap.Field{
		zap.String("entity", event.Entity),
		zap.String("pk", event.PK),
		zap.Strings("fields", event.Fields),
		zap.Time("timestamp", event.Timestamp),
	}

	switch {
	case event.Err != nil:
		fields = append(fields, zap.Error(event.Err))
		lo.logger.Warn(string(event.Type), fields...)
	case event.Type == EventExists:
		fields = append(fields, zap.Bool("matched", event.Matched))
		lo.logger.Debug(string(event.Type), fields...)
	default:
		lo.logger.Info(string(event.Type), fields...)
	}
}
