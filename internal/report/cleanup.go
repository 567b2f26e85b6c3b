package report

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgetwatch/internal/log"
)

// Cleanup removes aged artifacts from the report directory. The live
// latest_budget_data.json is always kept; timestamped exports, HTML
// reports and charts older than maxAge go, and test/ artifacts older
// than testMaxAge go with them. An empty test/ directory is removed.
// Cleanup failures never fail a run; they are logged and skipped.
func Cleanup(ctx context.Context, logger *log.Logger, dir string, maxAge, testMaxAge time.Duration, now time.Time) int {
	removed := 0
	removed += sweep(ctx, logger, dir, now.Add(-maxAge))

	testDir := filepath.Join(dir, testSubdir)
	removed += sweep(ctx, logger, testDir, now.Add(-testMaxAge))

	// Drop the test dir once it is empty; os.Remove refuses non-empty
	// directories, which is exactly the behavior wanted here.
	if err := os.Remove(testDir); err == nil {
		logger.DebugContext(ctx, "removed empty test report dir", slog.String(log.FieldPath, testDir))
	}

	return removed
}

func sweep(ctx context.Context, logger *log.Logger, dir string, cutoff time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WarnContext(ctx, "cleanup: cannot read report dir",
				slog.String(log.FieldPath, dir),
				slog.Any(log.FieldError, err),
			)
		}
		return 0
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == latestName {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logger.WarnContext(ctx, "cleanup: cannot remove artifact",
				slog.String(log.FieldPath, path),
				slog.Any(log.FieldError, err),
			)
			continue
		}
		removed++
	}
	return removed
}
