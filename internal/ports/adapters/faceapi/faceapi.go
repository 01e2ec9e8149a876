// Package faceapi adapts an HTTP face-analysis service to the FaceDetector
// and LandmarkExtractor ports. The service is model-agnostic: anything that
// answers the two JSON endpoints below works.
package faceapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/forPelevin/reframe/internal/domain/geometry"
)

type Adapter struct {
	key     string
	baseURL string
	client  *http.Client
}

const requestTimeout = 90 * time.Second

func New(apiKey, baseURL string) *Adapter {
	return &Adapter{
		key:     apiKey,
		baseURL: normalizeBaseURL(baseURL),
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

type detectRequest struct {
	Images []string `json:"images"` // base64 PNG
}

type detectResponse struct {
	Detections [][]boxJSON `json:"detections"`
}

type boxJSON struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Detect posts a batch of frames and returns per-frame boxes in the
// coordinates of the frames sent. An empty box list for a frame is a valid
// "no face" answer.
func (a *Adapter) Detect(ctx context.Context, frames []image.Image) ([][]geometry.Rect, error) {
	if len(frames) == 0 {
		return nil, nil
	}

	req := detectRequest{Images: make([]string, 0, len(frames))}
	for _, f := range frames {
		enc, err := encodePNG(f)
		if err != nil {
			return nil, err
		}
		req.Images = append(req.Images, enc)
	}

	var resp detectResponse
	if err := a.post(ctx, "/v1/detect", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Detections) != len(frames) {
		return nil, fmt.Errorf("face service returned %d detection lists for %d frames", len(resp.Detections), len(frames))
	}

	out := make([][]geometry.Rect, len(frames))
	for i, boxes := range resp.Detections {
		for _, b := range boxes {
			out[i] = append(out[i], geometry.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: b.Height})
		}
	}
	return out, nil
}

type landmarksRequest struct {
	Image string `json:"image"`
}

type landmarksResponse struct {
	Found  bool `json:"found"`
	Points []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"points"`
}

// Landmarks posts a face crop and returns normalized mesh points, or
// ok=false when the service found no face mesh in the crop.
func (a *Adapter) Landmarks(ctx context.Context, face image.Image) ([]geometry.Point, bool, error) {
	enc, err := encodePNG(face)
	if err != nil {
		return nil, false, err
	}

	var resp landmarksResponse
	if err := a.post(ctx, "/v1/landmarks", landmarksRequest{Image: enc}, &resp); err != nil {
		return nil, false, err
	}
	if !resp.Found {
		return nil, false, nil
	}
	points := make([]geometry.Point, 0, len(resp.Points))
	for _, p := range resp.Points {
		points = append(points, geometry.Point{X: p.X, Y: p.Y})
	}
	return points, true, nil
}

func (a *Adapter) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if a.key != "" {
		req.Header.Set("Authorization", "Bearer "+a.key)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("face service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("face service %s: status %d: %s", path, resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode face service response: %w", err)
	}
	return nil
}

func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
