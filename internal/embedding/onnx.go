//go:build cgo
// +build cgo

// ONNX-based local embedding (requires CGO and the onnxruntime library).
package embedding

import (
	"context"
	"fmt"
	"image"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"github.com/itisrohit/Outlyne/pkg/utils"
)

const onnxInputSize = 224

// ONNXEmbedder runs the vision and text towers of the embedding model with
// ONNX Runtime. Tensors are pre-allocated and reused across calls, so all
// inference is serialized behind a single mutex; I/O-bound pipeline stages
// stay concurrent around it.
type ONNXEmbedder struct {
	visionSession *ort.AdvancedSession
	textSession   *ort.AdvancedSession
	dimensions    int
	maxTokens     int
	tokenizer     Tokenizer

	pixelTensor     *ort.Tensor[float32]
	visionOutTensor *ort.Tensor[float32]
	inputIDsTensor  *ort.Tensor[int64]
	textOutTensor   *ort.Tensor[float32]
	mu              sync.Mutex
}

// NewONNXEmbedder creates an ONNX embedder from exported vision and text
// tower models. InitializeEnvironment is called if not already done.
func NewONNXEmbedder(visionModelPath, textModelPath string, dimensions, maxTokens int) (*ONNXEmbedder, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	pixelData := make([]float32, 3*onnxInputSize*onnxInputSize)
	pixelTensor, err := ort.NewTensor(ort.NewShape(1, 3, onnxInputSize, onnxInputSize), pixelData)
	if err != nil {
		return nil, fmt.Errorf("failed to create pixel_values tensor: %w", err)
	}
	visionOutTensor, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		pixelTensor.Destroy()
		return nil, fmt.Errorf("failed to create vision output tensor: %w", err)
	}
	visionSession, err := ort.NewAdvancedSession(
		visionModelPath,
		[]string{"pixel_values"},
		[]string{"image_embeds"},
		[]ort.ArbitraryTensor{pixelTensor},
		[]ort.ArbitraryTensor{visionOutTensor},
		nil,
	)
	if err != nil {
		pixelTensor.Destroy()
		visionOutTensor.Destroy()
		return nil, fmt.Errorf("failed to create vision session: %w", err)
	}

	tokenizer := &SimpleTokenizer{}
	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), tokenizer.Tokenize("", maxTokens))
	if err != nil {
		visionSession.Destroy()
		pixelTensor.Destroy()
		visionOutTensor.Destroy()
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	textOutTensor, err := ort.NewTensor(ort.NewShape(1, int64(dimensions)), make([]float32, dimensions))
	if err != nil {
		visionSession.Destroy()
		pixelTensor.Destroy()
		visionOutTensor.Destroy()
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create text output tensor: %w", err)
	}
	textSession, err := ort.NewAdvancedSession(
		textModelPath,
		[]string{"input_ids"},
		[]string{"text_embeds"},
		[]ort.ArbitraryTensor{inputIDsTensor},
		[]ort.ArbitraryTensor{textOutTensor},
		nil,
	)
	if err != nil {
		visionSession.Destroy()
		pixelTensor.Destroy()
		visionOutTensor.Destroy()
		inputIDsTensor.Destroy()
		textOutTensor.Destroy()
		return nil, fmt.Errorf("failed to create text session: %w", err)
	}

	return &ONNXEmbedder{
		visionSession:   visionSession,
		textSession:     textSession,
		dimensions:      dimensions,
		maxTokens:       maxTokens,
		tokenizer:       tokenizer,
		pixelTensor:     pixelTensor,
		visionOutTensor: visionOutTensor,
		inputIDsTensor:  inputIDsTensor,
		textOutTensor:   textOutTensor,
	}, nil
}

// EmbedImage resizes img to the model input size, runs the vision tower, and
// returns the normalized embedding.
func (e *ONNXEmbedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	writePixelValues(e.pixelTensor.GetData(), img)

	if err := e.visionSession.Run(); err != nil {
		return nil, fmt.Errorf("vision inference failed: %w", err)
	}

	embedding := make([]float32, e.dimensions)
	copy(embedding, e.visionOutTensor.GetData()[:e.dimensions])
	utils.NormalizeL2(embedding)
	return embedding, nil
}

// EmbedTexts runs the text tower once per text and returns normalized
// embeddings in input order.
func (e *ONNXEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		copy(e.inputIDsTensor.GetData(), e.tokenizer.Tokenize(text, e.maxTokens))

		if err := e.textSession.Run(); err != nil {
			return nil, fmt.Errorf("text inference failed for %q: %w", text, err)
		}

		embedding := make([]float32, e.dimensions)
		copy(embedding, e.textOutTensor.GetData()[:e.dimensions])
		utils.NormalizeL2(embedding)
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return e.dimensions
}

// Close destroys the sessions and tensors.
func (e *ONNXEmbedder) Close() error {
	var err error
	if e.visionSession != nil {
		err = e.visionSession.Destroy()
		e.visionSession = nil
	}
	if e.textSession != nil {
		if derr := e.textSession.Destroy(); err == nil {
			err = derr
		}
		e.textSession = nil
	}
	if e.pixelTensor != nil {
		_ = e.pixelTensor.Destroy()
		e.pixelTensor = nil
	}
	if e.visionOutTensor != nil {
		_ = e.visionOutTensor.Destroy()
		e.visionOutTensor = nil
	}
	if e.inputIDsTensor != nil {
		_ = e.inputIDsTensor.Destroy()
		e.inputIDsTensor = nil
	}
	if e.textOutTensor != nil {
		_ = e.textOutTensor.Destroy()
		e.textOutTensor = nil
	}
	return err
}

// writePixelValues resizes img to onnxInputSize and writes CHW pixel values
// scaled to [-1, 1] into dst.
func writePixelValues(dst []float32, img image.Image) {
	scaled := image.NewRGBA(image.Rect(0, 0, onnxInputSize, onnxInputSize))
	draw.BiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	plane := onnxInputSize * onnxInputSize
	for y := 0; y < onnxInputSize; y++ {
		for x := 0; x < onnxInputSize; x++ {
			off := scaled.PixOffset(x, y)
			idx := y*onnxInputSize + x
			dst[idx] = float32(scaled.Pix[off])/127.5 - 1
			dst[plane+idx] = float32(scaled.Pix[off+1])/127.5 - 1
			dst[2*plane+idx] = float32(scaled.Pix[off+2])/127.5 - 1
		}
	}
}
