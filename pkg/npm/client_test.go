package npm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/depscope/depscope/pkg/errors"
)

func testClient(t *testing.T, registryURL, downloadsURL string) *Client {
	t.Helper()
	return NewClient(Config{
		RegistryURL:  registryURL,
		DownloadsURL: downloadsURL,
	})
}

func TestClient_PackageMetadata(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/express" {
			http.NotFound(w, r)
			return
		}
		hits.Add(1)
		fmt.Fprint(w, `{
			"name": "express",
			"dist-tags": {"latest": "4.18.2"},
			"versions": {
				"4.18.2": {
					"description": "Fast web framework",
					"license": "MIT",
					"dependencies": {"accepts": "~1.3.8"}
				}
			}
		}`)
	}))
	defer server.Close()

	c := testClient(t, server.URL, server.URL)

	rec, err := c.PackageMetadata(context.Background(), "express")
	if err != nil {
		t.Fatalf("PackageMetadata failed: %v", err)
	}
	if rec.Name != "express" {
		t.Errorf("expected name express, got %s", rec.Name)
	}
	info, ok := rec.Versions["4.18.2"]
	if !ok {
		t.Fatal("expected version 4.18.2 in record")
	}
	if len(info.Dependencies) != 1 || info.Dependencies[0].Name != "accepts" {
		t.Errorf("unexpected dependencies: %+v", info.Dependencies)
	}

	// Second call must be served from the process cache.
	if _, err := c.PackageMetadata(context.Background(), "express"); err != nil {
		t.Fatalf("cached PackageMetadata failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 registry hit, got %d", hits.Load())
	}
}

func TestClient_PackageMetadata_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c := testClient(t, server.URL, server.URL)

	_, err := c.PackageMetadata(context.Background(), "ghost-package")
	if err == nil {
		t.Fatal("expected error for missing package")
	}
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("expected ErrCodePackageNotFound, got %v", err)
	}
}

func TestClient_PackageMetadata_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"name": "flaky", "dist-tags": {"latest": "1.0.0"}, "versions": {"1.0.0": {}}}`)
	}))
	defer server.Close()

	c := testClient(t, server.URL, server.URL)

	rec, err := c.PackageMetadata(context.Background(), "flaky")
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if rec.Name != "flaky" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if hits.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", hits.Load())
	}
}

func TestClient_PackageMetadata_Malformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	}))
	defer server.Close()

	c := testClient(t, server.URL, server.URL)

	_, err := c.PackageMetadata(context.Background(), "garbled")
	if !errors.Is(err, errors.ErrCodeMalformed) {
		t.Errorf("expected ErrCodeMalformed, got %v", err)
	}
}

func TestClient_PackageMetadata_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c := NewClient(Config{
		RegistryURL:     server.URL,
		DownloadsURL:    server.URL,
		MetadataTimeout: 20 * time.Millisecond,
	})

	_, err := c.PackageMetadata(context.Background(), "slow")
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("expected ErrCodeTimeout, got %v", err)
	}
}

func TestClient_WeeklyDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"downloads": 123456, "package": "express"})
	}))
	defer server.Close()

	c := testClient(t, server.URL, server.URL)

	if got := c.WeeklyDownloads(context.Background(), "express"); got != 123456 {
		t.Errorf("WeeklyDownloads = %d, want 123456", got)
	}
}

func TestClient_WeeklyDownloads_FailSoft(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", http.NotFound},
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(500) }},
		{"malformed", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "??") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := testClient(t, server.URL, server.URL)
			if got := c.WeeklyDownloads(context.Background(), "pkg"); got != -1 {
				t.Errorf("expected -1 sentinel, got %d", got)
			}
		})
	}
}

func TestClient_ScopedPackageEscaping(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{"name": "@babel/core", "dist-tags": {"latest": "7.0.0"}, "versions": {"7.0.0": {}}}`)
	}))
	defer server.Close()

	c := testClient(t, server.URL, server.URL)
	if _, err := c.PackageMetadata(context.Background(), "@babel/core"); err != nil {
		t.Fatalf("PackageMetadata failed: %v", err)
	}
	if gotPath != "/@babel%2Fcore" {
		t.Errorf("expected escaped scoped path, got %s", gotPath)
	}
}
