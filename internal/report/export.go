package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	latestName    = "latest_budget_data.json"
	stampedFormat = "20060102_150405"
	testSubdir    = "test"
)

// Exporter writes run artifacts under a single report directory. Normal
// runs refresh latest_budget_data.json and add a timestamped copy; test
// runs write only under test/ so they never disturb the live export the
// API serves.
type Exporter struct {
	dir string
}

func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Dir returns the report directory root.
func (e *Exporter) Dir() string {
	return e.dir
}

// LatestPath returns the path of the live JSON export.
func (e *Exporter) LatestPath() string {
	return filepath.Join(e.dir, latestName)
}

// SaveBundle writes the JSON export for a run and returns the path of the
// timestamped copy.
func (e *Exporter) SaveBundle(b *Bundle) (string, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal export bundle: %w", err)
	}

	stamp := b.Timestamp.Format(stampedFormat)

	if b.TestMode {
		testDir := filepath.Join(e.dir, testSubdir)
		if err := os.MkdirAll(testDir, 0o755); err != nil {
			return "", fmt.Errorf("create test export dir: %w", err)
		}
		path := filepath.Join(testDir, fmt.Sprintf("test_budget_data_%s.json", stamp))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write test export: %w", err)
		}
		return path, nil
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	if err := os.WriteFile(e.LatestPath(), data, 0o644); err != nil {
		return "", fmt.Errorf("write latest export: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("budget_data_%s.json", stamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write timestamped export: %w", err)
	}
	return path, nil
}

// SaveHTML writes the rendered email body next to the JSON exports so a
// run can be inspected without a mailbox.
func (e *Exporter) SaveHTML(body string, now time.Time, testMode bool) (string, error) {
	dir := e.dir
	name := fmt.Sprintf("budget_report_%s.html", now.Format(stampedFormat))
	if testMode {
		dir = filepath.Join(e.dir, testSubdir)
		name = "test_" + name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write html report: %w", err)
	}
	return path, nil
}

// SaveChart writes the trend chart PNG. A nil chart is a no-op.
func (e *Exporter) SaveChart(png []byte, now time.Time, testMode bool) (string, error) {
	if len(png) == 0 {
		return "", nil
	}

	dir := e.dir
	name := fmt.Sprintf("budget_trends_%s.png", now.Format(stampedFormat))
	if testMode {
		dir = filepath.Join(e.dir, testSubdir)
		name = "test_" + name
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("write trend chart: %w", err)
	}
	return path, nil
}
