package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"path"
	"strings"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/coursemate/internal/normalisers"
)

// MaxFileSize bounds the blobs fetched (20MB).
const MaxFileSize = 20 * 1024 * 1024

// courseFile is a tree entry selected for ingestion.
type courseFile struct {
	Path     string
	SHA      string
	MIMEType string
}

// selectCourseFiles returns the supported, visible blobs below dir.
func selectCourseFiles(tree *gh.Tree, dir string) []courseFile {
	dir = strings.Trim(dir, "/")
	var files []courseFile
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		p := entry.GetPath()
		if dir != "" && p != dir && !strings.HasPrefix(p, dir+"/") {
			continue
		}
		if isHidden(p) {
			continue
		}
		if entry.GetSize() > MaxFileSize {
			continue
		}
		mimeType := normalisers.MIMETypeForPath(p)
		if mimeType == "" {
			continue
		}
		files = append(files, courseFile{Path: p, SHA: entry.GetSHA(), MIMEType: mimeType})
	}
	return files
}

// isHidden reports whether any element of p starts with a dot.
func isHidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// fetchBlobContent fetches the content of a blob and decodes it.
func fetchBlobContent(ctx context.Context, client *Client, owner, repo, sha string) ([]byte, error) {
	blob, err := client.GetBlob(ctx, owner, repo, sha)
	if err != nil {
		return nil, err
	}

	if blob.GetEncoding() == "base64" {
		content := strings.ReplaceAll(blob.GetContent(), "\n", "")
		decoded, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("decode blob %s: %w", sha, err)
		}
		return decoded, nil
	}
	return []byte(blob.GetContent()), nil
}

// buildFileURI creates a URI for a file.
func buildFileURI(owner, repo, ref, p string) string {
	return fmt.Sprintf("github://%s/%s/blob/%s/%s", owner, repo, ref, path.Clean(p))
}
