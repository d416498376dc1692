package embedding

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/itisrohit/Outlyne/pkg/utils"
)

// RemoteEmbedder talks to an HTTP inference service that hosts the
// vision-language model. The service exposes POST /embed/image and
// POST /embed/text; returned vectors are re-normalized defensively.
// Requests are independent, so the embedder is safe for concurrent use.
type RemoteEmbedder struct {
	endpoint   string
	dimensions int
	httpClient *http.Client
}

type embedImageRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type embedTextRequest struct {
	Texts []string `json:"texts"`
}

type embedImageResponse struct {
	Vector []float32 `json:"vector"`
}

type embedTextResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

// NewRemoteEmbedder creates a client for the inference service at endpoint.
func NewRemoteEmbedder(endpoint string, dimensions int, timeout time.Duration) *RemoteEmbedder {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemoteEmbedder{
		endpoint:   endpoint,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// EmbedImage encodes img as PNG and requests its embedding.
func (e *RemoteEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode sketch png: %w", err)
	}
	req := embedImageRequest{ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes())}

	var resp embedImageResponse
	if err := e.post(ctx, "/embed/image", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Vector) != e.dimensions {
		return nil, fmt.Errorf("inference service returned %d dims, want %d", len(resp.Vector), e.dimensions)
	}
	utils.NormalizeL2(resp.Vector)
	return resp.Vector, nil
}

// EmbedTexts requests one embedding per text, in input order.
func (e *RemoteEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var resp embedTextResponse
	if err := e.post(ctx, "/embed/text", embedTextRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Vectors) != len(texts) {
		return nil, fmt.Errorf("inference service returned %d vectors for %d texts", len(resp.Vectors), len(texts))
	}
	for _, v := range resp.Vectors {
		utils.NormalizeL2(v)
	}
	return resp.Vectors, nil
}

// Dimensions returns the embedding dimension.
func (e *RemoteEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the underlying HTTP client holds no resources to release.
func (e *RemoteEmbedder) Close() error {
	return nil
}

// IsHealthy checks whether the inference service is reachable.
func (e *RemoteEmbedder) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (e *RemoteEmbedder) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inference service request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode embed response: %w", err)
	}
	return nil
}
