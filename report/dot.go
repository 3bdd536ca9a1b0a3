package report

import (
	"fmt"
	"io"
	"os"
)

// DotWriter renders the session's bounds flow graph in Graphviz format.
type DotWriter struct {
	writer io.Writer
}

// NewDotWriter creates a dot writer.
func NewDotWriter(writer io.Writer) *DotWriter {
	return &DotWriter{writer: writer}
}

// Write renders the flow graph. The result must carry the bounds session.
func (w *DotWriter) Write(result *Result) error {
	if result.Session == nil {
		return fmt.Errorf("dot report requires the bounds session")
	}
	return result.Session.WriteFlowGraphDot(w.writer)
}

// WriteToFile renders the flow graph into the named file.
func (w *DotWriter) WriteToFile(result *Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := NewDotWriter(file)
	return writer.Write(result)
}
