// Package report streams benchmark samples as CSV rows for downstream
// statistical analysis.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"syscall"
)

// LabelColumn is the name of the first column of every table.
const LabelColumn = "benchmark"

// Writer renders samples against a fixed set of metric columns. The
// header is written by NewWriter and every row is flushed as soon as it is
// written.
type Writer struct {
	csv     *csv.Writer
	columns []string
	record  []string
}

// NewWriter writes the header row for columns to w and returns a Writer
// for the rows that follow. columns must not change for the life of the
// Writer.
func NewWriter(w io.Writer, columns []string) (*Writer, error) {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(columns)+1)
	header = append(header, LabelColumn)
	header = append(header, columns...)

	if err := writeFlushed(cw, header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	return &Writer{
		csv:     cw,
		columns: append([]string(nil), columns...),
		record:  make([]string, len(columns)+1),
	}, nil
}

// WriteRow writes one row for label. Columns missing from values are
// written as NaN; values for names that are not columns are ignored.
func (w *Writer) WriteRow(label string, values map[string]float64) error {
	w.record[0] = label

	for i, col := range w.columns {
		v, ok := values[col]
		if !ok {
			v = math.NaN()
		}

		w.record[i+1] = FormatValue(v)
	}

	if err := writeFlushed(w.csv, w.record); err != nil {
		return fmt.Errorf("write row for %s: %w", label, err)
	}

	return nil
}

// FormatValue renders v in its shortest round-trip form ("1", "2.5",
// "NaN").
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// IsDisconnect reports whether err means the reader of the stream went
// away, which ends a run cleanly rather than failing it.
func IsDisconnect(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}

func writeFlushed(cw *csv.Writer, record []string) error {
	if err := cw.Write(record); err != nil {
		return err
	}

	cw.Flush()

	return cw.Error()
}
