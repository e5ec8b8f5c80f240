// Package filesystem provides a document source that reads course documents
// from a local folder, or a single file, and watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
	"github.com/custodia-labs/coursemate/internal/normalisers"
)

// Ensure Connector implements the interface.
var _ driven.DocumentSource = (*Connector)(nil)

// Connector reads supported course documents below a root path.
// Hidden files and directories are ignored.
type Connector struct {
	rootPath string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a filesystem connector rooted at rootPath.
func New(rootPath string) *Connector {
	return &Connector{rootPath: rootPath}
}

// Type returns the source type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// Name returns the root path.
func (c *Connector) Name() string {
	return c.rootPath
}

// Capabilities returns what this source supports.
func (c *Connector) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{SupportsWatch: true}
}

// Validate checks the root exists. A file root must be a supported document.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(c.rootPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("path %s does not exist: %w", c.rootPath, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.rootPath, err)
	}
	if !info.IsDir() && normalisers.MIMETypeForPath(c.rootPath) == "" {
		return fmt.Errorf("%s is not a supported course document: %w", c.rootPath, domain.ErrUnsupportedType)
	}
	return nil
}

// Fetch walks the root and streams every supported document.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if err := c.Validate(ctx); err != nil {
			errs <- err
			return
		}

		walkErr := filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return c.sendErr(ctx, errs, &driven.FetchError{URI: path, Err: err})
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}

			doc, ok, err := readDocument(path)
			if err != nil {
				return c.sendErr(ctx, errs, &driven.FetchError{URI: path, Err: err})
			}
			if !ok {
				logger.Debug("Skipping unsupported file %s", path)
				return nil
			}

			select {
			case docs <- doc:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
			_ = c.sendErr(ctx, errs, walkErr)
		}
	}()

	return docs, errs
}

// sendErr reports a per-document error, blocking until it is received or
// ctx is done.
func (c *Connector) sendErr(ctx context.Context, errs chan<- error, err error) error {
	select {
	case errs <- err:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// readDocument loads a supported file. ok is false for unsupported types.
func readDocument(path string) (domain.RawDocument, bool, error) {
	mimeType := normalisers.MIMETypeForPath(path)
	if mimeType == "" {
		return domain.RawDocument{}, false, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, false, err
	}
	return domain.RawDocument{URI: path, MIMEType: mimeType, Content: content}, true, nil
}

// Watch reports changes to supported documents below the root until ctx is
// cancelled. New subdirectories are watched as they appear.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("connector is closed")
	}
	info, err := os.Stat(c.rootPath)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if info.IsDir() {
		err = c.addDirs(watcher, c.rootPath)
	} else {
		err = watcher.Add(filepath.Dir(c.rootPath))
	}
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}
	if c.watcher != nil {
		c.watcher.Close()
	}
	c.watcher = watcher

	changes := make(chan domain.RawDocumentChange)
	go c.watchLoop(ctx, watcher, !info.IsDir(), changes)
	return changes, nil
}

func (c *Connector) watchLoop(
	ctx context.Context, watcher *fsnotify.Watcher, singleFile bool, changes chan<- domain.RawDocumentChange,
) {
	defer close(changes)
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if singleFile && filepath.Clean(event.Name) != filepath.Clean(c.rootPath) {
				continue
			}
			if event.Has(fsnotify.Create) && !singleFile {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(event.Name) {
					if err := c.addDirs(watcher, event.Name); err != nil {
						logger.Warn("Failed to watch %s: %v", event.Name, err)
					}
					continue
				}
			}
			change := c.handleFsEvent(event)
			if change == nil {
				continue
			}
			select {
			case changes <- *change:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error on %s: %v", c.rootPath, err)
		}
	}
}

// addDirs watches dir and every non-hidden directory below it.
func (c *Connector) addDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// handleFsEvent converts a filesystem event into a document change.
// It returns nil for events that do not concern a supported document.
func (c *Connector) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	rel, err := filepath.Rel(c.rootPath, event.Name)
	if err != nil || rel == "." {
		rel = filepath.Base(event.Name)
	}
	if isHidden(rel) {
		return nil
	}
	mimeType := normalisers.MIMETypeForPath(event.Name)
	if mimeType == "" {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.RawDocumentChange{
			Type:     domain.ChangeDeleted,
			Document: domain.RawDocument{URI: event.Name, MIMEType: mimeType},
		}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		doc, ok, err := readDocument(event.Name)
		if err != nil || !ok {
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.RawDocumentChange{Type: changeType, Document: doc}
	default:
		return nil
	}
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Close stops any active watch. Close is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}
