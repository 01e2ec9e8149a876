package faceapi

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer k" {
			t.Errorf("missing auth header, got %q", got)
		}
		var req detectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Images) != 2 {
			t.Errorf("expected 2 images, got %d", len(req.Images))
		}
		_ = json.NewEncoder(w).Encode(detectResponse{Detections: [][]boxJSON{
			{{X: 10, Y: 20, Width: 30, Height: 40}},
			{},
		}})
	}))
	defer srv.Close()

	a := New("k", srv.URL)
	frames := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 4, 4)),
		image.NewRGBA(image.Rect(0, 0, 4, 4)),
	}
	got, err := a.Detect(context.Background(), frames)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected per-frame results, got %d", len(got))
	}
	if len(got[0]) != 1 || got[0][0].X != 10 || got[0][0].Height != 40 {
		t.Fatalf("unexpected boxes: %+v", got[0])
	}
	if len(got[1]) != 0 {
		t.Fatalf("expected no faces in second frame, got %+v", got[1])
	}
}

func TestDetect_CountMismatchIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(detectResponse{Detections: [][]boxJSON{{}}})
	}))
	defer srv.Close()

	a := New("", srv.URL)
	frames := []image.Image{
		image.NewRGBA(image.Rect(0, 0, 4, 4)),
		image.NewRGBA(image.Rect(0, 0, 4, 4)),
	}
	if _, err := a.Detect(context.Background(), frames); err == nil {
		t.Fatalf("expected error on detection count mismatch")
	}
}

func TestLandmarks_NotFoundIsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/landmarks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(landmarksResponse{Found: false})
	}))
	defer srv.Close()

	a := New("", srv.URL)
	_, ok, err := a.Landmarks(context.Background(), image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if err != nil {
		t.Fatalf("Landmarks: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false when no mesh found")
	}
}

func TestPost_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New("", srv.URL)
	if _, err := a.Detect(context.Background(), []image.Image{image.NewRGBA(image.Rect(0, 0, 4, 4))}); err == nil {
		t.Fatalf("expected error on 500")
	}
}

func TestValidateBaseURL(t *testing.T) {
	cases := []struct {
		url     string
		wantErr bool
	}{
		{url: ""},
		{url: "http://127.0.0.1:8791"},
		{url: "http://localhost:9000"},
		{url: "https://faces.internal"},
		{url: "http://faces.internal", wantErr: true},
		{url: "faces.internal", wantErr: true},
		{url: "https://faces.internal?x=1", wantErr: true},
		{url: "ftp://faces.internal", wantErr: true},
	}
	for _, tc := range cases {
		err := ValidateBaseURL(tc.url)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ValidateBaseURL(%q) err = %v, wantErr %v", tc.url, err, tc.wantErr)
		}
	}
}
