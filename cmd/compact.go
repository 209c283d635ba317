package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/bkgoodman/superpwdhash/internal/core"
	"github.com/bkgoodman/superpwdhash/internal/logger"
)

// Compact compacts the registry database to reclaim unused space
func Compact(ctx context.Context, dbPath string) error {
	keeper := core.New(dbPath)
	defer keeper.Close()

	info, err := os.Stat(dbPath)
	if err != nil {
		return core.ErrNotInitialized
	}
	sizeBefore := info.Size()

	if err := keeper.Compact(); err != nil {
		return err
	}

	info, err = os.Stat(dbPath)
	if err != nil {
		return err
	}
	sizeAfter := info.Size()
	logger.Info(ctx, "compacted registry",
		zap.String("path", dbPath),
		zap.Int64("before", sizeBefore),
		zap.Int64("after", sizeAfter),
	)

	fmt.Fprintf(stdout, "Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
	return nil
}

// formatSize formats a file size in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
