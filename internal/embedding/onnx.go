//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXRemote runs a local sentence-embedding model through ONNX Runtime.
// It needs CGO and the onnxruntime shared library; inference is serialized.
type ONNXRemote struct {
	session    *ort.AdvancedSession
	dimensions int
	maxTokens  int
	tokenizer  Tokenizer

	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXRemote loads the model at modelPath. The output tensor must hold dimensions floats.
func NewONNXRemote(modelPath string, dimensions, maxTokens int) (*ONNXRemote, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}

	r := &ONNXRemote{
		dimensions: dimensions,
		maxTokens:  maxTokens,
		tokenizer:  &SimpleTokenizer{},
	}
	if err := r.allocate(); err != nil {
		r.Close()
		return nil, err
	}

	inputs := []ort.ArbitraryTensor{r.inputIDsTensor, r.attentionMaskTensor, r.tokenTypeIDsTensor}
	outputs := []ort.ArbitraryTensor{r.outputTensor}
	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"output"},
		inputs,
		outputs,
		nil,
	)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	r.session = session
	return r, nil
}

func (r *ONNXRemote) allocate() error {
	inputIDs, attentionMask, tokenTypeIDs := r.tokenizer.Tokenize("", r.maxTokens)
	shape := ort.NewShape(1, int64(r.maxTokens))

	var err error
	if r.inputIDsTensor, err = ort.NewTensor(shape, inputIDs); err != nil {
		return fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	if r.attentionMaskTensor, err = ort.NewTensor(shape, attentionMask); err != nil {
		return fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	if r.tokenTypeIDsTensor, err = ort.NewTensor(shape, tokenTypeIDs); err != nil {
		return fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	if r.outputTensor, err = ort.NewTensor(ort.NewShape(1, int64(r.dimensions)), make([]float32, r.dimensions)); err != nil {
		return fmt.Errorf("failed to create output tensor: %w", err)
	}
	return nil
}

// EmbedQuery runs inference for text and returns a copy of the output vector.
func (r *ONNXRemote) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil, fmt.Errorf("ONNX session closed")
	}

	inputIDs, attentionMask, tokenTypeIDs := r.tokenizer.Tokenize(text, r.maxTokens)
	copy(r.inputIDsTensor.GetData(), inputIDs)
	copy(r.attentionMaskTensor.GetData(), attentionMask)
	copy(r.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	out := make([]float32, r.dimensions)
	copy(out, r.outputTensor.GetData())
	return out, nil
}

// Close destroys the session and tensors.
func (r *ONNXRemote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var err error
	if r.session != nil {
		err = r.session.Destroy()
		r.session = nil
	}
	if r.inputIDsTensor != nil {
		_ = r.inputIDsTensor.Destroy()
		r.inputIDsTensor = nil
	}
	if r.attentionMaskTensor != nil {
		_ = r.attentionMaskTensor.Destroy()
		r.attentionMaskTensor = nil
	}
	if r.tokenTypeIDsTensor != nil {
		_ = r.tokenTypeIDsTensor.Destroy()
		r.tokenTypeIDsTensor = nil
	}
	if r.outputTensor != nil {
		_ = r.outputTensor.Destroy()
		r.outputTensor = nil
	}
	return err
}
