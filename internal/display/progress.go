package display

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
)

// ProgressCallback matches the shape an indexing pass reports progress
// through: current/total units completed within the named phase.
type ProgressCallback func(current, total int64, phase string)

// PhaseProgress drives one progressbar.ProgressBar per phase,
// finishing the previous bar and starting a fresh one whenever the
// reported phase changes (walk, parse, resolve, embed).
type PhaseProgress struct {
	bar   *progressbar.ProgressBar
	phase string
}

// NewPhaseProgress returns a PhaseProgress whose Report method has the
// ProgressCallback shape an indexing pass reports through.
func NewPhaseProgress() *PhaseProgress {
	return &PhaseProgress{}
}

// Report implements ProgressCallback.
func (p *PhaseProgress) Report(current, total int64, phase string) {
	if phase != p.phase {
		if p.bar != nil {
			_ = p.bar.Finish()
		}
		p.phase = phase
		p.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetDescription(phaseDescription(phase)),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	if p.bar != nil {
		_ = p.bar.Set64(current)
	}
}

// Finish closes out the last active bar, if any.
func (p *PhaseProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func phaseDescription(phase string) string {
	switch phase {
	case "walk":
		return "Scanning files"
	case "parse":
		return "Parsing"
	case "resolve":
		return "Resolving references"
	case "embed":
		return "Generating embeddings"
	case "write":
		return "Writing index"
	default:
		return fmt.Sprintf("Indexing (%s)", phase)
	}
}
