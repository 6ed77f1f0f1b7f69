package port

import "cutout/internal/core/domain"

type ProgressReporter interface {
	// Report publishes a progress update for the current run. Implementations
	// must tolerate being called from the pipeline at any stage.
	Report(progress domain.Progress)
}

// ProgressFunc adapts a plain function to the ProgressReporter interface.
type ProgressFunc func(progress domain.Progress)

func (f ProgressFunc) Report(progress domain.Progress) {
	f(progress)
}

// DiscardProgress drops all progress updates.
var DiscardProgress = ProgressFunc(func(domain.Progress) {})
