// Package ingest discovers document files on disk for the batch tools: a
// one-shot recursive walk for directory runs and an fsnotify watcher for
// drop-folder mode. Both skip hidden entries and pick up only the
// extensions the pipeline accepts.
package ingest

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamaahin/docpipe/constants"
	"github.com/jamaahin/docpipe/internal/entity"
)

// FileError records one file the walk could not load.
type FileError struct {
	Path string
	Err  string
}

// DirStats aggregates one directory walk.
type DirStats struct {
	Scanned uint32
	Matched uint32
	Loaded  uint32
	Failed  uint32
}

// Scan is the outcome of one directory walk: the uploads ready for the
// pipeline, the files that could not be read, and the aggregate counts.
type Scan struct {
	Uploads  []entity.Upload
	Failures []FileError
	Stats    DirStats
}

// ReadDirectory walks root, filters by the allowed extensions, skips hidden
// entries, and reads every matching file into memory. Per-file read errors
// are captured and the walk continues; the returned error covers only the
// walk itself.
func ReadDirectory(root string) (*Scan, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}

	scan := &Scan{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		scan.Stats.Scanned++
		if walkErr != nil {
			scan.Failures = append(scan.Failures, FileError{Path: path, Err: walkErr.Error()})
			scan.Stats.Failed++
			return nil
		}
		if isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !constants.IsAllowedExt(filepath.Ext(path)) {
			return nil
		}
		scan.Stats.Matched++

		data, err := os.ReadFile(path)
		if err != nil {
			scan.Failures = append(scan.Failures, FileError{Path: path, Err: err.Error()})
			scan.Stats.Failed++
			return nil
		}
		scan.Uploads = append(scan.Uploads, entity.Upload{Filename: relName(root, path), Data: data})
		scan.Stats.Loaded++
		return nil
	})
	if err != nil {
		return scan, err
	}
	return scan, nil
}

// relName keeps upload names short and collision free across subdirectories.
func relName(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
