package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Aman3189/soriva-backend-sub011/internal/risk"
)

// keywordFile is the on-disk shape of a risk keyword override file.
type keywordFile struct {
	Categories map[string][]string `yaml:"categories"`
}

// LoadKeywords reads a risk keyword override file. The file replaces the
// compiled-in sets wholesale; a category missing from the file has no
// keywords at all.
func LoadKeywords(path string) (map[risk.Category][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords %s: %w", path, err)
	}
	var kf keywordFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse keywords %s: %w", path, err)
	}
	if len(kf.Categories) == 0 {
		return nil, fmt.Errorf("keywords %s: no categories", path)
	}

	out := make(map[risk.Category][]string, len(kf.Categories))
	for name, kws := range kf.Categories {
		out[risk.Category(name)] = kws
	}
	return out, nil
}

// WatchKeywords reloads the keyword file whenever it changes and hands the
// parsed sets to onChange. A file that fails to parse is ignored and the
// previous sets stay live. The returned stop function ends the watch.
func WatchKeywords(path string, logger *zap.Logger, onChange func(map[risk.Category][]string)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	// Watch the directory, not the file: editors replace files on save and
	// the inode-level watch would die with the old inode.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				sets, err := LoadKeywords(path)
				if err != nil {
					logger.Warn("keyword reload failed, keeping previous sets",
						zap.String("path", path),
						zap.Error(err),
					)
					continue
				}
				logger.Info("risk keywords reloaded",
					zap.String("path", path),
					zap.Int("categories", len(sets)),
				)
				onChange(sets)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("keyword watcher error", zap.Error(err))
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
