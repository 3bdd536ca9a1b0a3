package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gookit/color"
	"github.com/mattn/go-isatty"

	"github.com/the-shank/HandlERR/detecterr"
)

// TextWriter renders a result as human-readable text.
type TextWriter struct {
	writer    io.Writer
	verbose   bool
	showColor bool
	showStats bool
}

// NewTextWriter creates a text writer. Color defaults to on when the target
// is a terminal.
func NewTextWriter(writer io.Writer, options ...TextOption) *TextWriter {
	w := &TextWriter{
		writer:    writer,
		showStats: true,
	}

	if f, ok := writer.(*os.File); ok {
		w.showColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	for _, opt := range options {
		opt(w)
	}

	return w
}

// TextOption configures a TextWriter.
type TextOption func(*TextWriter)

// WithVerbose enables per-guard detail rows.
func WithVerbose() TextOption {
	return func(w *TextWriter) {
		w.verbose = true
	}
}

// WithColor forces colored output regardless of the target.
func WithColor() TextOption {
	return func(w *TextWriter) {
		w.showColor = true
	}
}

// WithoutStats disables the summary section.
func WithoutStats() TextOption {
	return func(w *TextWriter) {
		w.showStats = false
	}
}

// Write renders the result as text.
func (w *TextWriter) Write(result *Result) error {
	if len(result.Annotations) == 0 && len(result.Findings) == 0 {
		w.writeEmpty(result)
		return nil
	}

	w.writeHeader(result)

	if w.showStats {
		w.writeStatistics(result)
	}

	w.writeAnnotations(result)
	w.writeFindings(result)

	return nil
}

// WriteToFile renders the result into the named file. Color is re-derived
// from the target, so files come out plain unless forced.
func (w *TextWriter) WriteToFile(result *Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := NewTextWriter(file, w.options()...)
	return writer.Write(result)
}

func (w *TextWriter) writeHeader(result *Result) {
	fmt.Fprintf(w.writer, "\n")
	fmt.Fprintf(w.writer, "HandlERR Scan Results\n")
	fmt.Fprintf(w.writer, "=====================\n")
	fmt.Fprintf(w.writer, "Files scanned: %d\n", result.FilesScanned)
	fmt.Fprintf(w.writer, "Scan Time: %s\n", result.Duration)
	fmt.Fprintf(w.writer, "Generated: %s\n\n", time.Now().Format(time.RFC3339))
}

func (w *TextWriter) writeEmpty(result *Result) {
	fmt.Fprintf(w.writer, "\n✓ No array pointers or error conventions found.\n\n")
	fmt.Fprintf(w.writer, "Scan Summary:\n")
	fmt.Fprintf(w.writer, "  Files scanned: %d\n", result.FilesScanned)
	fmt.Fprintf(w.writer, "  Duration: %s\n\n", result.Duration)
}

func (w *TextWriter) writeStatistics(result *Result) {
	bounded := 0
	impossible := 0
	unresolved := 0
	byPriority := make(map[string]int)
	for _, a := range result.Annotations {
		switch {
		case a.Impossible:
			impossible++
		case a.Bound != "":
			bounded++
			byPriority[a.Priority]++
		default:
			unresolved++
		}
	}

	fmt.Fprintf(w.writer, "Summary:\n")
	fmt.Fprintf(w.writer, "--------\n")
	fmt.Fprintf(w.writer, "Array pointers: %d\n", len(result.Annotations))
	fmt.Fprintf(w.writer, "  Bounded: %s\n", w.paint(color.Green, fmt.Sprintf("%d", bounded)))
	fmt.Fprintf(w.writer, "  Impossible: %s\n", w.paint(color.Red, fmt.Sprintf("%d", impossible)))
	fmt.Fprintf(w.writer, "  Unresolved: %s\n", w.paint(color.Yellow, fmt.Sprintf("%d", unresolved)))

	if w.verbose && bounded > 0 {
		fmt.Fprintf(w.writer, "By Priority:\n")
		for _, priority := range []string{"declared", "allocator", "flow-inferred", "heuristics"} {
			if count := byPriority[priority]; count > 0 {
				fmt.Fprintf(w.writer, "  %s: %d\n", priority, count)
			}
		}
	}

	byConvention := make(map[detecterr.Convention]int)
	for _, f := range result.Findings {
		byConvention[f.Convention]++
	}

	fmt.Fprintf(w.writer, "Error conventions: %d\n", len(result.Findings))
	fmt.Fprintf(w.writer, "  %s: %d\n", detecterr.ReturnsNullOnError, byConvention[detecterr.ReturnsNullOnError])
	fmt.Fprintf(w.writer, "  %s: %d\n\n", detecterr.ReturnsNegativeOnError, byConvention[detecterr.ReturnsNegativeOnError])

	files := make(map[string]bool)
	for _, a := range result.Annotations {
		files[a.Loc.File] = true
	}
	for _, f := range result.Findings {
		files[f.Func.File] = true
	}
	fmt.Fprintf(w.writer, "Files with results: %d\n\n", len(files))
}

func (w *TextWriter) writeAnnotations(result *Result) {
	if len(result.Annotations) == 0 {
		return
	}

	fmt.Fprintf(w.writer, "Array Pointer Bounds (%d):\n", len(result.Annotations))
	fmt.Fprintf(w.writer, "%s\n", strings.Repeat("=", 50))

	var order []string
	groups := make(map[string][]int)
	for i, a := range result.Annotations {
		if _, ok := groups[a.Loc.File]; !ok {
			order = append(order, a.Loc.File)
		}
		groups[a.Loc.File] = append(groups[a.Loc.File], i)
	}

	for _, filename := range order {
		fmt.Fprintf(w.writer, "\nFile: %s\n", filename)
		fmt.Fprintf(w.writer, "%s\n", strings.Repeat("-", 50))

		tw := tabwriter.NewWriter(w.writer, 0, 8, 2, ' ', 0)
		for _, i := range groups[filename] {
			a := result.Annotations[i]
			bound := a.Bound
			if bound == "" {
				bound = "-"
			}
			fmt.Fprintf(tw, "  %d:%d\t%s\t%s\t%s\n",
				a.Loc.Line,
				a.Loc.Col,
				a.Name,
				bound,
				w.paint(statusColor(a.Impossible, a.Bound, a.Priority), statusText(a.Impossible, a.Bound, a.Priority)),
			)
		}
		tw.Flush()
	}
	fmt.Fprintf(w.writer, "\n")
}

func (w *TextWriter) writeFindings(result *Result) {
	if len(result.Findings) == 0 {
		return
	}

	fmt.Fprintf(w.writer, "Error-Convention Findings (%d):\n", len(result.Findings))
	fmt.Fprintf(w.writer, "%s\n", strings.Repeat("=", 50))

	var order []string
	groups := make(map[string][]detecterr.Finding)
	for _, f := range result.Findings {
		if _, ok := groups[f.Func.File]; !ok {
			order = append(order, f.Func.File)
		}
		groups[f.Func.File] = append(groups[f.Func.File], f)
	}

	for _, filename := range order {
		fmt.Fprintf(w.writer, "\nFile: %s\n", filename)
		fmt.Fprintf(w.writer, "%s\n", strings.Repeat("-", 50))

		tw := tabwriter.NewWriter(w.writer, 0, 8, 2, ' ', 0)
		for _, f := range groups[filename] {
			fmt.Fprintf(tw, "  %d:%d\t%s\t%s\t%s\n",
				f.Line,
				f.Col,
				f.Func.Name,
				w.paint(conventionColor(f.Convention), string(f.Convention)),
				guardSummary(f.Guards),
			)
			if w.verbose {
				for _, g := range f.Guards {
					fmt.Fprintf(tw, "  \t\tGuard: %s at %d:%d (%s)\n", g.Text, g.Line, g.Col, g.Kind)
				}
			}
		}
		tw.Flush()
	}
	fmt.Fprintf(w.writer, "\n")
}

func (w *TextWriter) paint(c color.Color, s string) string {
	if !w.showColor {
		return s
	}
	return c.Sprint(s)
}

func (w *TextWriter) options() []TextOption {
	opts := []TextOption{}
	if w.verbose {
		opts = append(opts, WithVerbose())
	}
	if !w.showStats {
		opts = append(opts, WithoutStats())
	}
	return opts
}

func statusText(impossible bool, bound, priority string) string {
	switch {
	case impossible:
		return "impossible"
	case bound != "":
		return priority
	}
	return "unresolved"
}

func statusColor(impossible bool, bound, priority string) color.Color {
	if impossible {
		return color.Red
	}
	if bound == "" {
		return color.Gray
	}
	switch priority {
	case "declared":
		return color.Green
	case "allocator":
		return color.Cyan
	case "flow-inferred":
		return color.Blue
	default:
		return color.Yellow
	}
}

func conventionColor(c detecterr.Convention) color.Color {
	if c == detecterr.ReturnsNullOnError {
		return color.Magenta
	}
	return color.Cyan
}

func guardSummary(guards []detecterr.Guard) string {
	parts := make([]string, 0, len(guards))
	for _, g := range guards {
		parts = append(parts, fmt.Sprintf("%s (%s)", g.Text, g.Kind))
	}
	return strings.Join(parts, "; ")
}
