package batch

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/joshharrison/critpath/internal/delay"
	"github.com/joshharrison/critpath/internal/reporter"
)

// Config holds batch runner configuration.
type Config struct {
	MaxParallel    int
	FailFast       bool // cancel outstanding files after the first failure
	Delays         *delay.Table
	ImplicitInputs bool
	Cone           string // analyze only the fan-in cone of this component
	DisplayScale   float64
	Logger         *log.Logger
}

// Status represents the state of one file in a batch.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Outcome is the result of analyzing one netlist file.
type Outcome struct {
	Path       string
	Status     Status
	Report     *reporter.Report
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// jobResult communicates completion from worker goroutines to the event loop.
type jobResult struct {
	Index      int
	Report     *reporter.Report
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}
