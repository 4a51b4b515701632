package notification

import (
	"context"
	"log/slog"
)

type logNotifier struct {
	logger  *slog.Logger
	company string
}

// NewLogNotifier пишет письма в лог вместо отправки; для разработки
func NewLogNotifier(logger *slog.Logger, company string) Notifier {
	return &logNotifier{logger: logger, company: company}
}

func (n *logNotifier) SendWelcome(_ context.Context, msg Welcome) error {
	subject, body, err := RenderWelcome(n.company, msg)
	if err != nil {
		return err
	}
	n.logger.Info("welcome email",
		slog.String("to", msg.To),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
