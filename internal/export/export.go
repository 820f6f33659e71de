// Package export writes the full sample log of a session to a file.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/pulsemon/internal/errors"
	"github.com/rileyhilliard/pulsemon/internal/sample"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat converts a config or flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
	}
}

// Document is the JSON and YAML export layout.
type Document struct {
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Count      int             `json:"count" yaml:"count"`
	Samples    []sample.Sample `json:"samples" yaml:"samples"`
}

// Write encodes samples to w in the given format.
func Write(w io.Writer, f Format, samples []sample.Sample, now time.Time) error {
	switch f {
	case FormatCSV:
		return writeCSV(w, samples)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newDocument(samples, now))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newDocument(samples, now)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func newDocument(samples []sample.Sample, now time.Time) Document {
	if samples == nil {
		samples = []sample.Sample{}
	}
	return Document{
		ExportedAt: now.UTC().Truncate(time.Second),
		Count:      len(samples),
		Samples:    samples,
	}
}

func writeCSV(w io.Writer, samples []sample.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"value", "timestamp_ms"}); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write([]string{
			strconv.Itoa(s.Value),
			strconv.FormatInt(s.Timestamp, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SuggestedName builds a file name from the export time and sample count,
// e.g. 20240301_120000_samples_1500_output.csv.
func SuggestedName(now time.Time, count int, f Format) string {
	return fmt.Sprintf("%s_samples_%d_output.%s", now.Format("20060102_150405"), count, f)
}

// ToFile writes samples to a new file named by SuggestedName inside dir and
// returns its path.
func ToFile(dir string, f Format, samples []sample.Sample, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Can't create export directory %s", dir),
			"Check the path in export.dir and its permissions.")
	}

	path := filepath.Join(dir, SuggestedName(now, len(samples), f))
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Can't create %s", path),
			"Check the directory is writable, or wait a second and export again.")
	}

	if err := Write(file, f, samples, now); err != nil {
		file.Close()
		os.Remove(path)
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Failed to write %s", path), "")
	}
	if err := file.Close(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Failed to write %s", path), "")
	}
	return path, nil
}
