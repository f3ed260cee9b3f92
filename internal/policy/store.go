package policy

import (
	"context"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"govgate/internal/async"
	"govgate/internal/logging"
)

// Store hands out the current policy document to in-flight requests.
//
// Reload is a single atomic pointer swap: readers either see the whole old
// document or the whole new one, never a partially replaced value.
type Store struct {
	current atomic.Pointer[Document]
	logger  logging.Logger
}

// NewStore creates a store seeded with the given document.
func NewStore(doc *Document, logger logging.Logger) *Store {
	s := &Store{logger: logging.OrNop(logger)}
	s.current.Store(doc)
	return s
}

// Current returns the live policy document. The returned value must be
// treated as read-only.
func (s *Store) Current() *Document {
	return s.current.Load()
}

// Replace atomically swaps in a new document.
func (s *Store) Replace(doc *Document) {
	s.current.Store(doc)
	s.logger.Info("policy replaced: version=%s modes=%d", doc.Version, len(doc.Modes))
}

// Watch reloads the policy file whenever it changes on disk. A reload that
// fails to parse keeps the previous document in place and logs a warning.
// The watcher stops when ctx is cancelled.
func (s *Store) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}

	async.Go(s.logger, "policy-watch", func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				doc, err := Load(path)
				if err != nil {
					s.logger.Warn("policy reload rejected, keeping version %s: %v", s.Current().Version, err)
					continue
				}
				s.Replace(doc)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("policy watcher error: %v", err)
			}
		}
	})

	return nil
}
