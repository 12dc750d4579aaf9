package led

import "log/slog"

// noop implements Controller for hosts without a usable LED.
type noop struct {
	logger *slog.Logger
}

func newNoop(logger *slog.Logger) *noop {
	return &noop{logger: logger}
}

// SetColor logs the request and does nothing else.
func (n *noop) SetColor(c Color) error {
	n.logger.Debug("LED control not available (no-op)", "red", c.Red, "green", c.Green, "blue", c.Blue)
	return nil
}

func (n *noop) Name() string {
	return "none"
}
