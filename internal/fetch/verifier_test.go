package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rigup-sh/rigup/internal/logging"
)

func nopLogger() *slog.Logger {
	return slog.New(logging.NopHandler{})
}

func digestOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func TestFetchAndVerify_Match(t *testing.T) {
	content := []byte("#!/bin/sh\necho installing\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer srv.Close()

	v := New(srv.Client(), nopLogger())
	got, err := v.FetchAndVerify(context.Background(), srv.URL, digestOf(content))
	if err != nil {
		t.Fatalf("FetchAndVerify: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("verified bytes differ from served content")
	}
}

func TestFetchAndVerify_MismatchNeverExposesBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tampered content"))
	}))
	defer srv.Close()

	v := New(srv.Client(), nopLogger())
	got, err := v.FetchAndVerify(context.Background(), srv.URL, digestOf([]byte("expected content")))
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("err = %v, want ErrChecksumMismatch", err)
	}
	if got != nil {
		t.Fatal("unverified bytes must not be returned")
	}
}

func TestFetchAndVerify_MalformedDigest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content"))
	}))
	defer srv.Close()

	v := New(srv.Client(), nopLogger())
	for _, bad := range []string{"", "zz", "abcdef"} {
		if _, err := v.FetchAndVerify(context.Background(), srv.URL, bad); err == nil {
			t.Errorf("digest %q: expected error", bad)
		}
	}
}

func TestFetchAndVerify_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	v := New(srv.Client(), nopLogger())
	_, err := v.FetchAndVerify(context.Background(), srv.URL, digestOf([]byte("anything")))
	if err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestFetchAndVerify_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("content"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := New(srv.Client(), nopLogger())
	if _, err := v.FetchAndVerify(ctx, srv.URL, digestOf([]byte("content"))); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
