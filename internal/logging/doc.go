// Package logging provides structured logging for the recents panel.
//
// Logs are JSON lines written through log/slog, one file per state
// directory ({stateDir}/recents.log), rotated by size:
//
//	logger, err := logging.NewLogger(config.StateDir(), "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	run := logger.WithComponent("loader").WithRun(runID)
//	run.Info("load started", "mode", "auto")
//	run.WithIdentifier(id).Debug("card published", "position", 3)
//
// Child loggers share the parent's writer. [ReadLogs], [FilterLogs] and
// [WriteLogs] read the file back for the "recents logs" command.
package logging
