// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against the in-memory catalog repositories; tests that need
// a real page cache are skipped when Valkey is unavailable.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"coursepress/internal/cache"
	"coursepress/internal/catalog"
	"coursepress/internal/catalog/catalogtest"
	"coursepress/internal/newsletter"
	"coursepress/internal/render"
	"coursepress/internal/slug"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Memory    *catalogtest.Memory
	Images    *catalogtest.Images
	PageCache *cache.PageCache
	API       *API
	Pages     *Pages
}

// newTestEnv wires handlers over fresh in-memory storage. pageCache may
// be nil.
func newTestEnv(t *testing.T, pageCache *cache.PageCache) *testEnv {
	t.Helper()

	renderer, err := render.New("CoursePress", false)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	mem := catalogtest.NewMemory()
	images := catalogtest.NewImages()
	service := catalog.NewService(mem.Courses(), mem.Lessons(), mem.Blogs(), images, slug.PolicyReject)
	resolver := catalog.NewResolver(mem.Courses(), mem.Lessons())
	nl := newsletter.NewService(mem.Subscribers())

	return &testEnv{
		Memory:    mem,
		Images:    images,
		PageCache: pageCache,
		API:       NewAPI(service, resolver, nl, pageCache),
		Pages:     NewPages(renderer, service, resolver, pageCache),
	}
}

// withChiURLParams adds chi URL parameters, given as key/value pairs.
func withChiURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// formFile is one file part of a multipart request.
type formFile struct {
	field    string
	filename string
	data     []byte
}

// multipartRequest builds a POST with the given form fields and files.
func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(f.data)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// pngBytes returns a small valid PNG image.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// decodeJSON decodes a JSON object response body.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// newPageCache returns a PageCache on the test Valkey, or skips.
func newPageCache(t *testing.T) *cache.PageCache {
	t.Helper()
	return cache.NewPageCache(testValkeyClient(t), time.Minute)
}
