// Package classify derives a recall query label from a sketch embedding when
// the caller supplies no text hint.
package classify

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// defaultLabels is the built-in object-category vocabulary used when no
// vocabulary file is configured.
var defaultLabels = []string{
	"chair", "table", "sofa", "lamp", "bed",
	"car", "bicycle", "motorcycle", "airplane", "boat",
	"dog", "cat", "bird", "fish", "horse",
	"tree", "flower", "house", "mountain", "sun",
	"shoes", "hat", "shirt", "watch", "bag",
	"cup", "bottle", "phone", "laptop", "camera",
	"guitar", "book", "clock", "umbrella", "key",
}

// Vocabulary holds the ordered label set for zero-shot classification.
// Labels can come from a file (one per line, '#' comments ignored) and be
// hot-reloaded on change; a reload that yields no labels keeps the previous
// set. The label order is significant: ties in classification resolve to the
// earliest label.
type Vocabulary struct {
	mu      sync.RWMutex
	labels  []string
	path    string
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// NewVocabulary creates a vocabulary. When path is empty the built-in label
// set is used; otherwise the file is loaded immediately.
func NewVocabulary(path string, logger *zap.Logger) (*Vocabulary, error) {
	v := &Vocabulary{labels: defaultLabels, path: path, logger: logger}
	if path != "" {
		labels, err := loadLabels(path)
		if err != nil {
			return nil, fmt.Errorf("load vocabulary: %w", err)
		}
		v.labels = labels
	}
	return v, nil
}

// Labels returns a snapshot of the current label set in vocabulary order.
func (v *Vocabulary) Labels() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.labels))
	copy(out, v.labels)
	return out
}

// Len returns the current label count.
func (v *Vocabulary) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.labels)
}

// StartWatching reloads the vocabulary file whenever it changes. No-op when
// the vocabulary is built-in. The watch runs until Close is called.
func (v *Vocabulary) StartWatching() error {
	if v.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors typically replace the file, which drops
	// a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(v.path)); err != nil {
		watcher.Close()
		return err
	}
	v.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(v.path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				v.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				v.logger.Warn("vocabulary watch error", zap.Error(err))
			}
		}
	}()
	return nil
}

// Close stops watching the vocabulary file.
func (v *Vocabulary) Close() error {
	if v.watcher != nil {
		return v.watcher.Close()
	}
	return nil
}

func (v *Vocabulary) reload() {
	labels, err := loadLabels(v.path)
	if err != nil {
		v.logger.Warn("vocabulary reload failed, keeping previous labels",
			zap.String("path", v.path), zap.Error(err))
		return
	}
	v.mu.Lock()
	v.labels = labels
	v.mu.Unlock()
	v.logger.Info("vocabulary reloaded", zap.String("path", v.path), zap.Int("labels", len(labels)))
}

func loadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		labels = append(labels, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("vocabulary file %s has no labels", path)
	}
	return labels, nil
}
