package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ncfp/internal/core/domain"
)

// Summary colours.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourSuccess = lipgloss.Color("#A6E3A1")
	colourWarning = lipgloss.Color("#F9E2AF")
	colourError   = lipgloss.Color("#F38BA8")
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(colourPrimary).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colourMuted)
	successStyle = lipgloss.NewStyle().Foreground(colourSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colourWarning)
	errorStyle   = lipgloss.NewStyle().Foreground(colourError)
)

// outcomeStyle picks the colour for an extraction outcome.
func outcomeStyle(reason domain.MatchReason, count int) lipgloss.Style {
	switch {
	case count == 0:
		return mutedStyle
	case reason == domain.ReasonMatched:
		return successStyle
	case reason == domain.ReasonExtractionFailed:
		return errorStyle
	default:
		return warningStyle
	}
}

func printRunSummary(w io.Writer, r *domain.RunReport) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Run %s completed in %s", r.RunID, r.Duration.Round(time.Millisecond))))
	fmt.Fprintf(w, "Inputs: %d (%d already cached, %d skipped)\n", r.Inputs, r.Cached, r.Skipped)
	if r.Duplicates > 0 {
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("Ignored %d repeated input IDs", r.Duplicates)))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-24s %8s %8s %8s %8s", "Stage", "Pending", "Added", "Failed", "Skipped")))
	for _, s := range r.Stages {
		line := fmt.Sprintf("%-24s %8d %8d %8d %8d", s.Stage, s.Pending, s.Added, s.Failed, s.Skipped)
		switch {
		case s.Failed > 0:
			line = warningStyle.Render(line)
		case s.NoWork():
			line = mutedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render("Extraction"))
	for _, reason := range domain.AllMatchReasons() {
		n := r.Outcomes[reason]
		fmt.Fprintln(w, outcomeStyle(reason, n).Render(fmt.Sprintf("  %-28s %6d", reason, n)))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Matched %d sequence pairs\n", r.Pairs)
	fmt.Fprintf(w, "  Protein:    %s\n", r.ProteinPath)
	fmt.Fprintf(w, "  Nucleotide: %s\n", r.NucleotidePath)
	if r.SkippedPath != "" {
		fmt.Fprintf(w, "  Skipped:    %s\n", r.SkippedPath)
	}
}

func printCacheStats(w io.Writer, path string, st *domain.CacheStats) {
	fmt.Fprintln(w, titleStyle.Render("Cache "+path))
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render("Contents"))
	fmt.Fprintf(w, "  Input sequences:        %d\n", st.Sequences)
	fmt.Fprintf(w, "  With nucleotide query:  %d\n", st.SequencesWithNtQuery)
	fmt.Fprintf(w, "  Nucleotide UIDs:        %d\n", st.RemoteIDs)
	fmt.Fprintf(w, "  Headers:                %d\n", st.Headers)
	fmt.Fprintf(w, "  Full records:           %d\n", st.Records)
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render("Outstanding"))
	pending := func(label string, n int) {
		line := fmt.Sprintf("  %-24s%d", label, n)
		if n > 0 {
			line = warningStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	pending("Sequences without UIDs:", st.SequencesWithoutLinks)
	pending("UIDs without accession:", st.RemoteIDsNoAccession)
	pending("Accessions w/o header:", st.AccessionsNoHeader)
	pending("Sequences w/o record:", st.SequencesNoRecord)
}
