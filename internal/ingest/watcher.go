package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jamaahin/docpipe/constants"
)

// WatchConfig controls drop-folder discovery.
type WatchConfig struct {
	Roots       []string
	InitialScan bool          // emit files already present under the roots
	Debounce    time.Duration // coalesce rapid create/write bursts
}

// Watch emits paths of eligible files appearing under the roots until ctx is
// cancelled. Files present before the watch starts are emitted only when
// InitialScan is set. Both channels close when the watch stops.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no roots provided")
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	addTree := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if isHidden(path) && path != root {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && eligible(path) {
				select {
				case evCh <- path:
				default:
					logger.Warn("ingest.watch.drop", "path", path)
				}
			}
			return nil
		})
	}
	for _, root := range cfg.Roots {
		if err := addTree(root); err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer w.Close()

		pending := map[string]struct{}{}
		var timer *time.Timer
		var timerC <-chan time.Time

		flush := func() {
			for p := range pending {
				select {
				case evCh <- p:
				default:
					logger.Warn("ingest.watch.drop", "path", p)
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					// A new directory needs its own watch before
					// anything lands inside it.
					if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
						if err := addTree(e.Name); err != nil {
							logger.Warn("ingest.watch.add_dir_fail", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if !eligible(e.Name) || e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				if timer == nil {
					timer = time.NewTimer(cfg.Debounce)
					timerC = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(cfg.Debounce)
				}
			case <-timerC:
				flush()
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func eligible(path string) bool {
	if isHidden(path) {
		return false
	}
	return constants.IsAllowedExt(filepath.Ext(path))
}
