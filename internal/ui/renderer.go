package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/drew/stratsite/internal/site"
)

// UIMode represents the UI rendering mode
type UIMode string

// UI mode constants
const (
	UIModeBasic UIMode = "basic"
	UIModeFull  UIMode = "full"
)

// Renderer prints the console build summary. Everything it prints is also
// kept so a plain copy can be saved afterwards.
type Renderer struct {
	mode       UIMode
	colors     *Colors
	width      int
	out        io.Writer
	transcript bytes.Buffer
}

// NewRenderer creates a new UI renderer writing to out
func NewRenderer(out io.Writer, mode UIMode, enableColors bool) *Renderer {
	isTTY := IsWriterTTY(out)

	// Force basic mode if not a TTY
	if !isTTY && mode != UIModeBasic {
		mode = UIModeBasic
	}

	// Disable colors if not a TTY or explicitly disabled
	if !isTTY {
		enableColors = false
	}

	r := &Renderer{
		mode:   mode,
		colors: NewColors(enableColors),
		width:  GetTerminalWidth(),
	}
	r.out = io.MultiWriter(out, &r.transcript)
	return r
}

func (r *Renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.out, s)
}

// RenderHeader renders the build header
func (r *Renderer) RenderHeader(runID, root string, modes []string, publish string) {
	switch r.mode {
	case UIModeFull:
		r.renderFullHeader(runID, root, modes, publish)
	default:
		r.renderBasicHeader(runID, root, modes, publish)
	}
}

func (r *Renderer) renderFullHeader(runID, root string, modes []string, publish string) {
	title := "stratsite build " + runID
	line := strings.Repeat("═", r.width-2)
	r.printf("╔%s╗\n", line)
	r.printf("║ %s%-*s║\n", r.colors.Bold(title), max(r.width-len(title)-3, 0), "")
	r.printf("║ %-*s║\n", r.width-3, "Root: "+root)
	r.printf("║ %-*s║\n", r.width-3, fmt.Sprintf("Modes: %s | Publish: %s", strings.Join(modes, ","), publish))
	r.printf("╚%s╝\n", line)
	r.println("")
}

func (r *Renderer) renderBasicHeader(runID, root string, modes []string, publish string) {
	r.printf("stratsite build %s\n", runID)
	r.printf("Root: %s\n", root)
	r.printf("Modes: %s\n", strings.Join(modes, ", "))
	r.printf("Publish: %s\n", publish)
	r.println("")
}

// truncate shortens s to maxLen, adding "..." if needed
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// strategyStatus is EMPTY without reports, WARN when a result file could not
// be loaded and OK otherwise
func strategyStatus(dates, failed int) string {
	switch {
	case dates == 0:
		return StatusEmpty
	case failed > 0:
		return StatusWarn
	default:
		return StatusOK
	}
}

// RenderSummary renders the per-strategy table and totals for a finished build
func (r *Renderer) RenderSummary(report *site.Report) {
	maxKeyWidth := 12
	for _, s := range report.Index.Strategies {
		if n := min(len(s.Key), 30); n > maxKeyWidth {
			maxKeyWidth = n
		}
	}

	r.println(r.colors.Bold("Summary:"))

	for _, s := range report.Index.Strategies {
		outputs, galleries := 0, 0
		for _, d := range s.Dates {
			if d.HasOutput {
				outputs++
			}
			if d.HasImages() {
				galleries++
			}
		}

		status := strategyStatus(len(s.Dates), report.FailedResults[s.Key])
		symbol := r.colors.StatusSymbol(status)
		statusText := r.colors.StatusColor(status, fmt.Sprintf("%-6s", status))
		counts := fmt.Sprintf("%d dates, %d outputs, %d galleries", len(s.Dates), outputs, galleries)
		r.printf("  %s %-*s %s %s %s\n", symbol, maxKeyWidth, truncate(s.Key, 30), statusText, counts, r.colors.Gray(s.Name))
	}
	if len(report.Index.Strategies) == 0 {
		r.println("  " + r.colors.Gray("no strategies found"))
	}

	r.println("")
	for _, name := range sortedKeys(report.Artifacts) {
		r.printf("  %-8s %d files\n", name, report.Artifacts[name])
	}
	if report.Sources > 0 {
		r.printf("  %-8s %d files\n", "sources", report.Sources)
	}

	seconds := report.Duration.Seconds()
	r.printf("Total: %d files in %.2fs (%dms)\n", report.Total(), seconds, report.Duration.Milliseconds())

	r.println("")
	if report.ParseErrors > 0 {
		r.println(r.colors.Yellow(fmt.Sprintf("stratsite: site built, %d result files could not be loaded", report.ParseErrors)))
	} else {
		r.println(r.colors.Green("stratsite: site built"))
	}
}

// RenderServing announces the preview server
func (r *Renderer) RenderServing(root, addr string) {
	r.printf("Serving %s at %s\n", root, r.colors.Blue(previewURL(addr)))
	r.println(r.colors.Gray("Press Ctrl+C to stop"))
}

// RenderError prints a fatal error line
func (r *Renderer) RenderError(err error) {
	r.printf("%s %s\n", r.colors.StatusSymbol(StatusFail), r.colors.Red("ERROR: "+err.Error()))
}

// SavePlain writes everything rendered so far to path with color codes removed
func (r *Renderer) SavePlain(path string) error {
	return os.WriteFile(path, []byte(stripansi.Strip(r.transcript.String())), 0644)
}

func previewURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
