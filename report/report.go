// Package report renders scan results in text, JSON and Graphviz formats.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/the-shank/HandlERR/bounds"
	"github.com/the-shank/HandlERR/detecterr"
	"github.com/the-shank/HandlERR/frontend"
)

// Format identifies a report output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDot  Format = "dot"
	FormatAll  Format = "all"
)

// Result aggregates the output of one scan: every annotated array pointer,
// every error-convention finding, and the session that produced them.
type Result struct {
	Annotations  []frontend.Annotation
	Findings     []detecterr.Finding
	Session      *bounds.Info
	FilesScanned int
	Duration     time.Duration
}

// Writer renders a result in one format.
type Writer interface {
	Write(result *Result) error
	WriteToFile(result *Result, filename string) error
}

// Manager drives report generation for one or more formats.
type Manager struct {
	format    Format
	outputDir string
	timestamp bool
	filename  string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithFormat sets the output format.
func WithFormat(format Format) ManagerOption {
	return func(m *Manager) {
		m.format = format
	}
}

// WithOutputDir sets the directory report files are written to.
func WithOutputDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.outputDir = dir
	}
}

// WithTimestamp appends a timestamp to generated filenames.
func WithTimestamp() ManagerOption {
	return func(m *Manager) {
		m.timestamp = true
	}
}

// WithFilename overrides the generated filename.
func WithFilename(filename string) ManagerOption {
	return func(m *Manager) {
		m.filename = filename
	}
}

// NewManager creates a report manager. The default is text output in the
// current directory.
func NewManager(options ...ManagerOption) *Manager {
	m := &Manager{
		format:    FormatText,
		outputDir: ".",
	}

	for _, option := range options {
		option(m)
	}

	return m
}

// CreateWriter builds a writer for the given format targeting w.
func (m *Manager) CreateWriter(format Format, w io.Writer) (Writer, error) {
	switch format {
	case FormatJSON:
		return NewJSONWriter(w), nil
	case FormatText:
		return NewTextWriter(w), nil
	case FormatDot:
		return NewDotWriter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Generate writes the result in the configured format and returns the paths
// of the files produced. FormatAll produces one file per format.
func (m *Manager) Generate(result *Result) ([]string, error) {
	var outputFiles []string

	switch m.format {
	case FormatAll:
		formats := []Format{FormatText, FormatJSON, FormatDot}
		for _, format := range formats {
			files, err := m.generateSingleFormat(result, format)
			if err != nil {
				return nil, err
			}
			outputFiles = append(outputFiles, files...)
		}
	case FormatText, FormatJSON, FormatDot:
		files, err := m.generateSingleFormat(result, m.format)
		if err != nil {
			return nil, err
		}
		outputFiles = append(outputFiles, files...)
	default:
		return nil, fmt.Errorf("unsupported format: %s", m.format)
	}

	return outputFiles, nil
}

func (m *Manager) generateSingleFormat(result *Result, format Format) ([]string, error) {
	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := m.generateFilename(format)

	filePath := filepath.Join(m.outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer, err := m.CreateWriter(format, file)
	if err != nil {
		return nil, err
	}

	if err := writer.Write(result); err != nil {
		return nil, fmt.Errorf("failed to write %s report: %w", format, err)
	}

	return []string{filePath}, nil
}

func (m *Manager) generateFilename(format Format) string {
	if m.filename != "" {
		return m.filename
	}

	timestamp := ""
	if m.timestamp {
		timestamp = time.Now().Format("20060102_150405")
	}

	baseName := "handlerr_report"

	if timestamp != "" {
		return fmt.Sprintf("%s_%s.%s", baseName, timestamp, format)
	}

	return fmt.Sprintf("%s.%s", baseName, format)
}

// ParseFormat converts a format string to a Format.
func ParseFormat(formatStr string) (Format, error) {
	switch strings.ToLower(formatStr) {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "dot":
		return FormatDot, nil
	case "all":
		return FormatAll, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", formatStr)
	}
}

// SupportedFormats lists every accepted format.
func SupportedFormats() []Format {
	return []Format{FormatText, FormatJSON, FormatDot, FormatAll}
}

// FormatDescription returns a human-readable description of a format.
func FormatDescription(format Format) string {
	descriptions := map[Format]string{
		FormatText: "Text format - Human-readable console output",
		FormatJSON: "JSON format - Machine-readable output",
		FormatDot:  "Dot format - Graphviz rendering of the bounds flow graph",
		FormatAll:  "All formats - Generate reports in all supported formats",
	}

	if desc, ok := descriptions[format]; ok {
		return desc
	}

	return "Unknown format"
}
