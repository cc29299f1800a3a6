package pipeline

import (
	"github.com/aem-design/compose/internal/feature"
	"github.com/aem-design/compose/internal/merge"
)

// Status is the terminal state of a run.
type Status int

const (
	// Completed means every feature was processed and Config is ready to use.
	Completed Status = iota

	// RestartNeeded means dependencies were just installed and the same
	// command must be run again before the configuration can be trusted.
	RestartNeeded

	// Aborted means a feature failed and no configuration was produced.
	Aborted
)

func (s Status) String() string {
	switch s {
	case Completed:
		return "completed"
	case RestartNeeded:
		return "restart_needed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// ExitCode maps the status onto the process exit contract. A restart is a
// successful termination that asks the operator to re-run the command.
func (s Status) ExitCode() int {
	if s == Aborted {
		return 1
	}
	return 0
}

// Result is the outcome of one run. Config is set only when Status is
// Completed. Err and Feature are set only when Status is Aborted.
type Result struct {
	Status Status

	// Config is the merged configuration.
	Config merge.Config

	// Skipped lists, in processing order, the features whose dependencies
	// were already satisfied.
	Skipped []feature.ID

	// Feature is the feature that caused an abort.
	Feature feature.ID

	// Err is the cause of an abort.
	Err error
}
