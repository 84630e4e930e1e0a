package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/common"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

var _ Loader = (*FSLoader)(nil)

// FSLoader reads exam papers from the local filesystem.
type FSLoader struct {
	MaxFiles int   // soft cap per call, across every source of that call
	MaxBytes int64 // larger files are skipped
	logger   *slog.Logger
}

func NewFSLoader(maxFiles, maxFileMB int, logger *slog.Logger) *FSLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if maxFiles <= 0 {
		maxFiles = constants.MaxFilesDefault
	}
	if maxFileMB <= 0 {
		maxFileMB = constants.MaxFileMBDefault
	}
	return &FSLoader{
		MaxFiles: maxFiles,
		MaxBytes: int64(maxFileMB) << 20,
		logger:   logger,
	}
}

// Load reads the explicit paths first and then walks root when it is set. Both
// sources share one file cap and one dedup set.
func (l *FSLoader) Load(ctx context.Context, paths []string, root string, skipHidden bool) ([]entity.SourceDocument, []IngestionResult, DirStats, error) {
	b := newBatch()
	if err := l.addPaths(ctx, b, paths); err != nil {
		return b.docs, b.results, b.stats, err
	}
	if root != "" {
		if err := l.walk(ctx, b, root, skipHidden); err != nil {
			return b.docs, b.results, b.stats, err
		}
	}
	l.logStats("ingest.load.done", b.stats, "paths", len(paths), "root", root)
	return b.docs, b.results, b.stats, nil
}

// LoadPaths loads each path in order. Unsupported, oversized, duplicate or
// over-limit files are skipped and reported; the call itself only fails on a
// cancelled context.
func (l *FSLoader) LoadPaths(ctx context.Context, paths []string) ([]entity.SourceDocument, []IngestionResult, DirStats, error) {
	b := newBatch()
	if err := l.addPaths(ctx, b, paths); err != nil {
		return b.docs, b.results, b.stats, err
	}
	l.logStats("ingest.paths.done", b.stats)
	return b.docs, b.results, b.stats, nil
}

// LoadDirectory walks root in lexical order, filters by extension and skips
// hidden entries if requested.
func (l *FSLoader) LoadDirectory(ctx context.Context, root string, skipHidden bool) ([]entity.SourceDocument, []IngestionResult, DirStats, error) {
	b := newBatch()
	if err := l.walk(ctx, b, root, skipHidden); err != nil {
		return b.docs, b.results, b.stats, err
	}
	l.logStats("ingest.directory.done", b.stats, "root", root)
	return b.docs, b.results, b.stats, nil
}

func (l *FSLoader) addPaths(ctx context.Context, b *batch, paths []string) error {
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.stats.Scanned++
		if !AllowedExt(filepath.Ext(p)) {
			b.skip(p, "unsupported extension")
			continue
		}
		b.stats.Matched++
		l.loadOne(b, p)
	}
	return nil
}

func (l *FSLoader) walk(ctx context.Context, b *batch, root string, skipHidden bool) error {
	if strings.TrimSpace(root) == "" {
		return fmt.Errorf("%w: root_path is required", common.ErrInvalidInput)
	}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			b.stats.Scanned++
			b.results = append(b.results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			b.stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		b.stats.Scanned++
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		b.stats.Matched++
		l.loadOne(b, path)
		return nil
	})
	return common.WrapError(err, "walk "+root)
}

type batch struct {
	docs    []entity.SourceDocument
	results []IngestionResult
	stats   DirStats
	hashes  map[string]struct{}
}

func newBatch() *batch {
	return &batch{hashes: make(map[string]struct{})}
}

func (b *batch) skip(path, reason string) {
	b.results = append(b.results, IngestionResult{SourcePath: path, Skipped: reason})
	b.stats.Skipped++
}

func (b *batch) fail(path string, err error) {
	b.results = append(b.results, IngestionResult{SourcePath: path, Err: err.Error()})
	b.stats.Failed++
}

func (l *FSLoader) loadOne(b *batch, path string) {
	if len(b.docs) >= l.MaxFiles {
		l.logger.Warn("ingest.file.skipped", "path", path, "reason", "file limit reached", "max_files", l.MaxFiles)
		b.skip(path, fmt.Sprintf("file limit of %d reached", l.MaxFiles))
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		b.fail(path, err)
		return
	}
	if info.Size() > l.MaxBytes {
		l.logger.Warn("ingest.file.skipped", "path", path, "reason", "too large", "bytes", info.Size())
		b.skip(path, fmt.Sprintf("larger than %d MB", l.MaxBytes>>20))
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		b.fail(path, err)
		return
	}

	sum := sha256.Sum256(content)
	hashHex := hex.EncodeToString(sum[:])
	if _, dup := b.hashes[hashHex]; dup {
		l.logger.Info("ingest.file.deduplicated", "path", path, "hash", hashHex)
		b.results = append(b.results, IngestionResult{SourcePath: path, Size: info.Size(), HashHex: hashHex, Deduplicated: true})
		b.stats.Deduplicated++
		return
	}

	mediaType, err := DetectMediaType(path, content)
	if err != nil {
		l.logger.Warn("ingest.file.skipped", "path", path, "reason", err.Error())
		b.skip(path, err.Error())
		return
	}

	b.hashes[hashHex] = struct{}{}
	b.docs = append(b.docs, entity.NewSourceDocument(filepath.Base(path), mediaType, content))
	b.results = append(b.results, IngestionResult{
		SourcePath: path,
		MediaType:  mediaType,
		Size:       info.Size(),
		HashHex:    hashHex,
	})
	b.stats.Succeeded++
	l.logger.Debug("ingest.file.loaded", "path", path, "media_type", mediaType, "bytes", info.Size())
}

// DetectMediaType sniffs content and checks it agrees with the extension's family.
// Plain text has no magic number, so text files keep the extension's media type.
func DetectMediaType(path string, content []byte) (string, error) {
	byExt := constants.MediaTypeForExt(filepath.Ext(path))
	if byExt == "" {
		return "", fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	sniffed := constants.BaseMediaType(mimetype.Detect(content).String())

	want := constants.MapMediaTypeToFormat(byExt)
	if got := constants.MapMediaTypeToFormat(sniffed); got != want {
		return "", fmt.Errorf("content looks like %s, not %s", sniffed, byExt)
	}
	if want == constants.TXT {
		return byExt, nil
	}
	return sniffed, nil
}

func (l *FSLoader) logStats(event string, s DirStats, extra ...any) {
	args := append([]any{
		"scanned", s.Scanned,
		"matched", s.Matched,
		"succeeded", s.Succeeded,
		"deduplicated", s.Deduplicated,
		"skipped", s.Skipped,
		"failed", s.Failed,
	}, extra...)
	l.logger.Info(event, args...)
}
