package logger

import (
	"log/slog"
	"os"
)

func New(env string) *slog.Logger {
	level := slog.LevelInfo
	if env == "dev" {
		level = slog.LevelDebug
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}

// ForTopic возвращает логгер консьюмера с постоянным атрибутом topic.
func ForTopic(log *slog.Logger, topic string) *slog.Logger {
	return log.With("topic", topic)
}
