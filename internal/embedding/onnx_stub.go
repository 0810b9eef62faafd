//go:build !cgo
// +build !cgo

package embedding

import (
	"context"
	"errors"
)

// ONNXRemote stub type when built without CGO (see onnx.go for the real implementation).
type ONNXRemote struct{}

// NewONNXRemote returns an error when built without CGO (ONNX not available).
func NewONNXRemote(_ string, _, _ int) (*ONNXRemote, error) {
	return nil, errors.New("ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime")
}

// EmbedQuery always fails on the stub.
func (r *ONNXRemote) EmbedQuery(context.Context, string) ([]float32, error) {
	return nil, errors.New("ONNX embedder not available")
}

// Close is a no-op on the stub.
func (r *ONNXRemote) Close() error {
	return nil
}
