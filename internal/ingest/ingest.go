package ingest

import (
	"context"

	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	MediaType    string
	Size         int64
	HashHex      string
	Deduplicated bool
	Skipped      string // reason the file was not loaded, if any
	Err          string
}

// DirStats summarizes one ingest call.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Skipped      uint32
	Failed       uint32
}

// Loader turns local files into source documents for a run.
type Loader interface {
	// Load loads paths and then everything under root, sharing one file cap.
	Load(ctx context.Context, paths []string, root string, skipHidden bool) ([]entity.SourceDocument, []IngestionResult, DirStats, error)
	// LoadPaths loads the given files in order.
	LoadPaths(ctx context.Context, paths []string) ([]entity.SourceDocument, []IngestionResult, DirStats, error)
	// LoadDirectory loads all matching files under root.
	LoadDirectory(ctx context.Context, root string, skipHidden bool) ([]entity.SourceDocument, []IngestionResult, DirStats, error)
}
