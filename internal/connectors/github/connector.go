package github

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/coursemate/internal/core/domain"
	"github.com/custodia-labs/coursemate/internal/core/ports/driven"
	"github.com/custodia-labs/coursemate/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.DocumentSource = (*Connector)(nil)

// errClosed is returned by operations on a closed connector.
var errClosed = errors.New("github: connector is closed")

// Connector fetches course documents from a GitHub repository.
type Connector struct {
	config *Config
	client *Client

	mu     sync.Mutex
	ref    string
	closed bool
}

// New creates a GitHub connector for the configured repository.
func New(ctx context.Context, cfg *Config) (*Connector, error) {
	if cfg == nil || cfg.Owner == "" || cfg.Repo == "" {
		return nil, ErrInvalidRepoSpec
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Connector{config: cfg, client: client, ref: cfg.Ref}, nil
}

// Type returns the source type identifier.
func (c *Connector) Type() string {
	return "github"
}

// Name returns the owner/repo[/path][@ref] spec.
func (c *Connector) Name() string {
	return c.config.String()
}

// Capabilities returns what this source supports.
func (c *Connector) Capabilities() driven.SourceCapabilities {
	return driven.SourceCapabilities{
		SupportsWatch:        false, // No webhooks in CLI
		RequiresAuth:         false, // Public repositories need no token
		SupportsRateLimiting: true,
	}
}

// Validate checks the repository is reachable and resolves the ref.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.resolveRef(ctx)
	return err
}

// resolveRef returns the configured ref or the repository's default branch.
func (c *Connector) resolveRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return "", errClosed
	}
	ref := c.ref
	c.mu.Unlock()

	repo, err := c.client.GetRepository(ctx, c.config.Owner, c.config.Repo)
	if err != nil {
		switch {
		case IsNotFound(err):
			return "", fmt.Errorf("%s/%s: %w: %w", c.config.Owner, c.config.Repo, ErrRepoNotFound, domain.ErrNotFound)
		case IsUnauthorized(err):
			return "", fmt.Errorf("%s/%s: invalid GITHUB_TOKEN: %w", c.config.Owner, c.config.Repo, err)
		default:
			return "", err
		}
	}
	if ref == "" {
		ref = repo.GetDefaultBranch()
		c.mu.Lock()
		c.ref = ref
		c.mu.Unlock()
	}
	return ref, nil
}

// Fetch lists the tree at the ref and streams every supported document below
// the configured path. A blob that cannot be read is reported as a
// FetchError and the fetch continues.
func (c *Connector) Fetch(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		owner, name := c.config.Owner, c.config.Repo
		ref, err := c.resolveRef(ctx)
		if err != nil {
			errs <- err
			return
		}

		tree, err := c.client.GetTree(ctx, owner, name, ref)
		if err != nil {
			errs <- fmt.Errorf("list %s: %w", c.Name(), err)
			return
		}
		if tree.GetTruncated() {
			logger.Warn("GitHub tree for %s is truncated; some documents may be missing", c.Name())
		}

		files := selectCourseFiles(tree, c.config.Path)
		logger.Debug("Found %d course document(s) in %s", len(files), c.Name())

		for _, f := range files {
			uri := buildFileURI(owner, name, ref, f.Path)
			content, err := fetchBlobContent(ctx, c.client, owner, name, f.SHA)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case errs <- &driven.FetchError{URI: uri, Err: err}:
				case <-ctx.Done():
					return
				}
				continue
			}

			select {
			case docs <- domain.RawDocument{URI: uri, MIMEType: f.MIMEType, Content: content}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return docs, errs
}

// Watch is not supported: GitHub change notifications require webhooks.
func (c *Connector) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	return nil, fmt.Errorf("github: watch: %w", domain.ErrUnsupportedType)
}

// Close marks the connector closed. Close is idempotent.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
