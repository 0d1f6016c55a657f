// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch stages remote job sources on local disk. Sources given as
// http(s) URLs are downloaded into a staging directory before execution;
// local paths pass through untouched.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/pdiddy/pdf-toolkit/internal/httputil"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Fetcher downloads remote sources into its staging directory.
type Fetcher struct {
	client *http.Client
	dir    string
	owned  bool
}

// New builds a Fetcher staging into dir. An empty dir stages into a fresh
// temporary directory that Close removes.
func New(client *http.Client, dir string) (*Fetcher, error) {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	owned := false
	if dir == "" {
		d, err := os.MkdirTemp("", "pdf-toolkit-fetch-*")
		if err != nil {
			return nil, fmt.Errorf("creating staging directory: %w", err)
		}
		dir = d
		owned = true
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	return &Fetcher{client: client, dir: dir, owned: owned}, nil
}

// Close removes the staging directory when the fetcher created it.
func (f *Fetcher) Close() error {
	if !f.owned {
		return nil
	}
	return os.RemoveAll(f.dir)
}

// IsRemote reports whether a source names an http(s) URL.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Stage returns a descriptor whose sources all point at files on disk,
// downloading the remote ones. A download failure classifies the same way a
// missing local path does. When the descriptor carried no output path, the
// default resolves from the staged file's name, relative to the working
// directory rather than the staging area.
func (f *Fetcher) Stage(ctx context.Context, job types.JobDescriptor) (types.JobDescriptor, error) {
	changed := false
	srcs := make([]string, len(job.Sources))
	copy(srcs, job.Sources)

	for i, src := range srcs {
		if !IsRemote(src) {
			continue
		}
		local, err := f.download(ctx, src, job.ID, i)
		if err != nil {
			return job, types.WrapFailure(types.CodeFileNotFound,
				fmt.Errorf("source unavailable: %w", err))
		}
		srcs[i] = local
		changed = true
	}
	if !changed {
		return job, nil
	}

	out := job
	out.Sources = srcs
	if out.Output == "" {
		out.Output = types.DefaultOutput(out.Op, filepath.Base(srcs[0]))
	}
	return out, nil
}

// download fetches rawURL into the job's staging subdirectory through a
// temporary file, keeping the URL's base name so default output naming
// reads naturally.
func (f *Fetcher) download(ctx context.Context, rawURL, jobID string, idx int) (string, error) {
	dir := filepath.Join(f.dir, jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	dest := filepath.Join(dir, remoteName(rawURL, idx))

	resp, err := httputil.Get(ctx, f.client, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(dir, ".fetch-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return dest, nil
}

// remoteName derives a local file name from the URL path.
func remoteName(rawURL string, idx int) string {
	name := ""
	if u, err := url.Parse(rawURL); err == nil {
		name = path.Base(u.Path)
	}
	if name == "" || name == "." || name == "/" {
		name = fmt.Sprintf("source_%d", idx+1)
	}
	return name
}
