package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/the-shank/HandlERR/detecterr"
)

// JSONReport is the machine-readable report shape.
type JSONReport struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Tool        ToolInfo               `json:"tool"`
	Summary     Summary                `json:"summary"`
	Annotations []AnnotationReport     `json:"annotations"`
	Findings    []detecterr.Finding    `json:"findings"`
	Statistics  map[string]interface{} `json:"statistics,omitempty"`
}

// ToolInfo identifies the producing tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Summary counts results by outcome.
type Summary struct {
	ArrayPointers int            `json:"array_pointers"`
	Bounded       int            `json:"bounded"`
	Impossible    int            `json:"impossible"`
	Unresolved    int            `json:"unresolved"`
	ByPriority    map[string]int `json:"by_priority"`
	ByConvention  map[string]int `json:"by_convention"`
}

// AnnotationReport is one array pointer with its inferred bound, if any.
type AnnotationReport struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Col        int    `json:"col"`
	Name       string `json:"name"`
	Bound      string `json:"bound,omitempty"`
	Priority   string `json:"priority,omitempty"`
	Impossible bool   `json:"impossible,omitempty"`
}

// JSONWriter renders a result as JSON.
type JSONWriter struct {
	writer io.Writer
	pretty bool
}

// NewJSONWriter creates a JSON writer.
func NewJSONWriter(writer io.Writer, options ...JSONOption) *JSONWriter {
	w := &JSONWriter{
		writer: writer,
	}

	for _, opt := range options {
		opt(w)
	}

	return w
}

// JSONOption configures a JSONWriter.
type JSONOption func(*JSONWriter)

// WithPrettyJSON enables indented output.
func WithPrettyJSON() JSONOption {
	return func(w *JSONWriter) {
		w.pretty = true
	}
}

// Write renders the result as JSON.
func (w *JSONWriter) Write(result *Result) error {
	report := w.generateReport(result)

	var data []byte
	var err error

	if w.pretty {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = json.Marshal(report)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON report: %w", err)
	}

	_, err = w.writer.Write(data)
	return err
}

// WriteToFile renders the result into the named file.
func (w *JSONWriter) WriteToFile(result *Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := NewJSONWriter(file, w.options()...)
	return writer.Write(result)
}

func (w *JSONWriter) generateReport(result *Result) *JSONReport {
	report := &JSONReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		Tool: ToolInfo{
			Name:        "HandlERR",
			Version:     "1.0.0",
			Description: "Checked-pointer bounds inference and error-convention detection",
		},
		Summary: Summary{
			ArrayPointers: len(result.Annotations),
			ByPriority:    make(map[string]int),
			ByConvention:  make(map[string]int),
		},
		Annotations: make([]AnnotationReport, 0, len(result.Annotations)),
		Findings:    make([]detecterr.Finding, 0, len(result.Findings)),
		Statistics:  make(map[string]interface{}),
	}

	for _, a := range result.Annotations {
		switch {
		case a.Impossible:
			report.Summary.Impossible++
		case a.Bound != "":
			report.Summary.Bounded++
			report.Summary.ByPriority[a.Priority]++
		default:
			report.Summary.Unresolved++
		}

		report.Annotations = append(report.Annotations, AnnotationReport{
			File:       a.Loc.File,
			Line:       int(a.Loc.Line),
			Col:        int(a.Loc.Col),
			Name:       a.Name,
			Bound:      a.Bound,
			Priority:   a.Priority,
			Impossible: a.Impossible,
		})
	}

	for _, f := range result.Findings {
		report.Summary.ByConvention[string(f.Convention)]++
	}
	report.Findings = append(report.Findings, result.Findings...)

	report.Statistics["scan_duration"] = result.Duration.String()
	report.Statistics["files_scanned"] = result.FilesScanned

	return report
}

func (w *JSONWriter) options() []JSONOption {
	opts := []JSONOption{}
	if w.pretty {
		opts = append(opts, WithPrettyJSON())
	}
	return opts
}
