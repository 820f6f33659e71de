package doctor

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/pulsemon/internal/export"
)

// ExportDirCheck verifies exports can be written. A missing directory is
// fixable because export creates it anyway.
type ExportDirCheck struct {
	Dir    string
	Format string
}

func (c *ExportDirCheck) Name() string     { return "export_dir" }
func (c *ExportDirCheck) Category() string { return CategoryExport }

func (c *ExportDirCheck) Run() CheckResult {
	if _, err := export.ParseFormat(c.Format); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Unknown export format %q", c.Format),
			Suggestion: "Use csv, json or yaml for export.format",
		}
	}

	info, err := os.Stat(c.Dir)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Export directory %s doesn't exist yet", c.Dir),
			Suggestion: "It is created on the first export, or run 'pulsemon doctor --fix'",
			Fixable:    true,
		}
	}
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusFail,
			Message: fmt.Sprintf("Can't access export directory %s: %v", c.Dir, err),
		}
	}
	if !info.IsDir() {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Export path %s is not a directory", c.Dir),
			Suggestion: "Point export.dir at a directory",
		}
	}

	probe, err := os.CreateTemp(c.Dir, ".pulsemon-doctor-*")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Export directory %s is not writable", c.Dir),
			Suggestion: "Check permissions on " + c.Dir,
		}
	}
	probe.Close()
	os.Remove(probe.Name())

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Exports go to %s as %s", c.Dir, c.Format),
	}
}

// Fix creates the export directory.
func (c *ExportDirCheck) Fix() error {
	return os.MkdirAll(c.Dir, 0o755)
}
