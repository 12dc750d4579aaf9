// Package logging provides structured logging with per-module log levels.
//
// Module loggers come from [GetLogger] and are safe to obtain before
// [Initialize]; they start at info and pick up the configured level once
// logging is initialized.
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"chirp":  "debug",
//			"poller": "warn",
//		},
//	})
//
//	logger := logging.GetLogger("camera")
//	logger.Info("Connected", "firmware", version)
//
// Every record goes to stdout when it is attached, to the systemd journal
// when journald is running, and to an in-memory ring buffer that backs the
// log history endpoint. A callback registered with [SetLogCallback] sees
// each buffered entry as it is written.
//
// Journal entries are tagged with [Identifier]:
//
//	journalctl -t pixynode -f
//	journalctl -t pixynode MODULE=poller
//
// TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	chirp = "debug"   # any other key is a module override
//	api = "warn"
package logging
