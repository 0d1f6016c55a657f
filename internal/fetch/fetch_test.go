// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

func TestIsRemote(t *testing.T) {
	cases := []struct {
		source string
		want   bool
	}{
		{"http://example.com/report.pdf", true},
		{"https://example.com/report.pdf", true},
		{"/home/user/report.pdf", false},
		{"report.pdf", false},
		{"ftp://example.com/report.pdf", false},
	}
	for _, tc := range cases {
		if got := IsRemote(tc.source); got != tc.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tc.source, got, tc.want)
		}
	}
}

func TestStageDownloadsRemoteSource(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/report.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("%PDF-1.4 remote"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	f, err := New(ts.Client(), dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	job := types.NewJob(types.OpPDFToWord, []string{ts.URL + "/files/report.pdf"}, "", types.JobOptions{})
	staged, err := f.Stage(context.Background(), job)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}

	want := filepath.Join(dir, job.ID, "report.pdf")
	if staged.Sources[0] != want {
		t.Fatalf("staged source = %q, want %q", staged.Sources[0], want)
	}
	data, err := os.ReadFile(staged.Sources[0])
	if err != nil {
		t.Fatalf("reading staged file: %v", err)
	}
	if string(data) != "%PDF-1.4 remote" {
		t.Errorf("staged content = %q", data)
	}
	if staged.Output != "report.docx" {
		t.Errorf("staged output = %q, want report.docx", staged.Output)
	}
	if !IsRemote(job.Sources[0]) {
		t.Error("original descriptor was mutated")
	}
}

func TestStageLocalPassThrough(t *testing.T) {
	src := filepath.Join(t.TempDir(), "local.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	f, err := New(nil, dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	job := types.NewJob(types.OpCompress, []string{src}, "", types.JobOptions{})
	staged, err := f.Stage(context.Background(), job)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if staged.Sources[0] != src {
		t.Errorf("source = %q, want %q untouched", staged.Sources[0], src)
	}
	if _, err := os.Stat(filepath.Join(dir, job.ID)); !os.IsNotExist(err) {
		t.Error("staging subdirectory created for a local-only job")
	}
}

func TestStageKeepsExplicitOutput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("%PDF-1.4"))
	}))
	defer ts.Close()

	local := filepath.Join(t.TempDir(), "cover.pdf")
	if err := os.WriteFile(local, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := New(ts.Client(), t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	job := types.NewJob(types.OpMerge, []string{ts.URL + "/body.pdf", local}, "/tmp/bundle.pdf", types.JobOptions{})
	staged, err := f.Stage(context.Background(), job)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if staged.Output != "/tmp/bundle.pdf" {
		t.Errorf("output = %q, want explicit path kept", staged.Output)
	}
	if IsRemote(staged.Sources[0]) {
		t.Errorf("first source still remote: %q", staged.Sources[0])
	}
	if staged.Sources[1] != local {
		t.Errorf("local source = %q, want %q untouched", staged.Sources[1], local)
	}
}

func TestStageDownloadFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	f, err := New(ts.Client(), t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	job := types.NewJob(types.OpPDFToText, []string{ts.URL + "/missing.pdf"}, "", types.JobOptions{})
	_, err = f.Stage(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing remote source")
	}
	if code := types.ClassifyError(err); code != types.CodeFileNotFound {
		t.Errorf("code = %s, want %s", code, types.CodeFileNotFound)
	}
	if !strings.Contains(err.Error(), "source unavailable") {
		t.Errorf("error = %q, want mention of unavailable source", err)
	}
}

func TestRemoteName(t *testing.T) {
	cases := []struct {
		url  string
		idx  int
		want string
	}{
		{"https://example.com/reports/survey.pdf", 0, "survey.pdf"},
		{"https://example.com/download?id=7", 0, "download"},
		{"https://example.com/", 0, "source_1"},
		{"https://example.com", 2, "source_3"},
	}
	for _, tc := range cases {
		if got := remoteName(tc.url, tc.idx); got != tc.want {
			t.Errorf("remoteName(%q, %d) = %q, want %q", tc.url, tc.idx, got, tc.want)
		}
	}
}

func TestCloseRemovesOwnedDir(t *testing.T) {
	f, err := New(nil, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dir := f.dir
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("staging dir missing before Close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("owned staging dir survived Close")
	}
}

func TestCloseKeepsCallerDir(t *testing.T) {
	dir := t.TempDir()
	f, err := New(nil, dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("caller-owned dir removed by Close: %v", err)
	}
}
