package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestRequestIDEcho(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetReqId(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/modes", nil)
	req.Header.Set(RequestIDHeader, "abc-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-1" || rec.Header().Get(RequestIDHeader) != "abc-1" {
		t.Fatalf("request id not propagated: seen=%q header=%q", seen, rec.Header().Get(RequestIDHeader))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/modes", nil))
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("generated request id missing")
	}
}

func TestRecoverWritesJSON(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	h := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tick", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body struct {
		Status int    `json:"status"`
		Level  string `json:"level"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != 500 || body.Level != "fatal" {
		t.Fatalf("unexpected body %+v", body)
	}
	if !strings.Contains(logs.String(), "http.panic") || !strings.Contains(logs.String(), "boom") {
		t.Fatalf("panic not logged: %s", logs.String())
	}
}

func TestAccessLogLevel(t *testing.T) {
	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	h := AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte("x"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/tick?mode_id=2", nil))

	var line map[string]any
	if err := json.Unmarshal(logs.Bytes(), &line); err != nil {
		t.Fatalf("decode log: %v (%s)", err, logs.String())
	}
	if line["level"] != "WARN" || line["msg"] != "http.access" || line["mode_id"] != "2" {
		t.Fatalf("unexpected access log %v", line)
	}
	if line["status"].(float64) != 409 || line["bytes"].(float64) != 1 {
		t.Fatalf("unexpected status/bytes %v", line)
	}
}

func TestCompressionZstd(t *testing.T) {
	payload := strings.Repeat(`{"rows":20,"cols":10}`, 50)
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, payload)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/modes", nil)
	req.Header.Set("Accept-Encoding", "gzip, zstd")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("expected zstd, got %q", rec.Header().Get("Content-Encoding"))
	}
	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil || string(got) != payload {
		t.Fatalf("round trip mismatch: %v", err)
	}

	// 略過的路徑與 204 都不壓縮
	req = httptest.NewRequest(http.MethodGet, "/v1/metrics", nil)
	req.Header.Set("Accept-Encoding", "zstd")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "" || rec.Body.String() != payload {
		t.Fatalf("skip path should be plain")
	}
	empty := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	req = httptest.NewRequest(http.MethodGet, "/v1/modes", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec = httptest.NewRecorder()
	empty.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || rec.Header().Get("Content-Encoding") != "" || rec.Body.Len() != 0 {
		t.Fatalf("204 must not be compressed: %q %d", rec.Header().Get("Content-Encoding"), rec.Body.Len())
	}
}
