package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"urldiff/internal/platform/urlfilter"
)

// PTermPresenter renders diagnostics with pterm styles. Every element is
// rendered to a string first and written to w, so output never mixes with
// the URLs on stdout.
type PTermPresenter struct {
	mu             sync.Mutex
	w              io.Writer
	showSuppressed bool
	startTime      time.Time
}

// NewPTermPresenter creates a presenter writing to w.
func NewPTermPresenter(w io.Writer, showSuppressed bool) *PTermPresenter {
	return &PTermPresenter{
		w:              w,
		showSuppressed: showSuppressed,
		startTime:      time.Now(),
	}
}

// Start prints the header and effective configuration.
func (p *PTermPresenter) Start(info RunInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = time.Now()

	header := pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprint("urldiff " + info.Version)

	inputs := info.Inputs
	if len(inputs) == 0 {
		inputs = []string{"stdin"}
	}

	content := fmt.Sprintf("Threshold: %s\n", StylePrimary.Sprint(formatScore(info.Threshold)))
	content += fmt.Sprintf("Window: %d (%d probes)\n", info.Window, 2*info.Window)
	content += fmt.Sprintf("Query mode: %s\n", pterm.Yellow(info.QueryMode))
	content += fmt.Sprintf("Path strategy: %s\n", pterm.Yellow(info.PathStrategy))
	content += fmt.Sprintf("Ignore tracking: %s\n", boolToString(info.IgnoreTracking))
	content += fmt.Sprintf("Ignored params: %s\n", listOrNone(info.IgnoredParams))
	content += fmt.Sprintf("Scope: %s\n", listOrNone(info.Scope))
	content += fmt.Sprintf("Inputs: %s", listOrNone(inputs))

	box := pterm.DefaultBox.
		WithTitle("Configuration").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).
		Sprint(content)

	fmt.Fprintln(p.w, header)
	fmt.Fprintln(p.w, box)
	fmt.Fprintln(p.w, pterm.LightBlue(SeparatorHeavy))
}

// Accepted prints the score of an accepted URL.
func (p *PTermPresenter) Accepted(d urlfilter.Decision) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "%s %s %s\n",
		StyleSuccess.Sprint(IconAccepted),
		StylePrimary.Sprint("[Score "+formatScore(d.Distance)+"]"),
		StyleSuccess.Sprint(d.Raw),
	)
}

// Suppressed prints the dropped URL next to the neighbour it matched, when
// enabled.
func (p *PTermPresenter) Suppressed(d urlfilter.Decision) {
	if !p.showSuppressed {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "%s %s %s %s\n",
		StyleSecondary.Sprint("[Dup "+formatScore(d.Distance)+"]"),
		StyleSecondary.Sprint(d.Raw),
		IconSuppressed,
		StyleSecondary.Sprint(d.Neighbor),
	)
}

// Skipped prints a warning for an unusable line.
func (p *PTermPresenter) Skipped(lineNo int, line string, reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, pterm.Warning.Sprintfln("%s line %d skipped (%s): %s", IconSkipped, lineNo, reason, line))
}

// Info prints an informational message.
func (p *PTermPresenter) Info(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, pterm.Info.Sprintln(msg))
}

// Warning prints a warning.
func (p *PTermPresenter) Warning(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, pterm.Warning.Sprintln(msg))
}

// Error prints an error.
func (p *PTermPresenter) Error(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.w, pterm.Error.Sprintln(StyleError.Sprint(msg)))
}

// Finish prints the summary table.
func (p *PTermPresenter) Finish(stats urlfilter.StreamStats) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.w, pterm.LightBlue(SeparatorHeavy))
	fmt.Fprint(p.w, pterm.DefaultSection.Sprint(IconStats+" Summary"))

	data := pterm.TableData{
		{"Metric", "Value"},
		{"Lines", fmt.Sprintf("%d", stats.Lines)},
		{"Accepted", StyleSuccess.Sprint(fmt.Sprintf("%d", stats.Accepted))},
		{"Suppressed", fmt.Sprintf("%d", stats.Suppressed)},
		{"Reduction", fmt.Sprintf("%.1f%%", stats.ReductionRatio())},
	}
	if stats.Invalid > 0 {
		data = append(data, []string{"Invalid", StyleWarning.Sprint(fmt.Sprintf("%d", stats.Invalid))})
	}
	if stats.OutOfScope > 0 {
		data = append(data, []string{"Out of scope", fmt.Sprintf("%d", stats.OutOfScope)})
	}
	if stats.Blank > 0 {
		data = append(data, []string{"Blank", fmt.Sprintf("%d", stats.Blank)})
	}
	data = append(data,
		[]string{"Comparisons", fmt.Sprintf("%d", stats.Comparisons)},
		[]string{IconTime + " Duration", formatDuration(stats.Duration)},
	)

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
	if err != nil {
		fmt.Fprintln(p.w, stats.String())
		return
	}
	fmt.Fprintln(p.w, table)
}

// Close does nothing; output is written synchronously.
func (p *PTermPresenter) Close() error {
	return nil
}
