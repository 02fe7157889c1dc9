// Package logging provides the structured logger used across kindlechess.
//
// It is a thin layer over log/slog that tags every entry with a subsystem
// name so that the auth flow, the event stream and the game session can be
// told apart in a single log file.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("OAuth", "Starting callback server on %s", addr)
//	logging.Debug("GameSession", "moves=%q", moves)
//	logging.Warn("EventStream", "Skipping malformed line")
//	logging.Error("Board", err, "Move %s was rejected", move)
//
// On the e-reader there is no console to read logs from, so the CLI can be
// told to append to a file instead:
//
//	if err := logging.InitForFile(logging.LevelInfo, "/mnt/us/kindlechess/log/app.log"); err != nil {
//	    ...
//	}
//	defer logging.Close()
//
// # Audit Logging
//
// Token persistence and removal are recorded with Audit. Audit lines carry a
// SECURITY_AUDIT prefix and never include token values:
//
//	logging.Audit(logging.AuditEvent{
//	    Action:  "token_stored",
//	    Outcome: "success",
//	    Target:  path,
//	})
package logging
