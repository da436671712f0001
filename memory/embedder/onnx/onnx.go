//go:build onnx

// Package onnx embeds text locally with ONNX Runtime and a BERT-style
// sentence transformer (all-MiniLM-L6-v2 by default). Built behind the
// onnx tag because it needs the onnxruntime shared library at runtime.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	ort "github.com/yalue/onnxruntime_go"
)

const maxSequenceLen = 128

// Config configures the local embedder.
type Config struct {
	// ModelPath points at the .onnx model file. Required.
	ModelPath string

	// TokenizerPath points at the HuggingFace tokenizer.json. Required.
	TokenizerPath string

	// LibraryPath points at libonnxruntime. Empty keeps the runtime's
	// default lookup.
	LibraryPath string

	// Dimensions is the output vector size. Default: 384.
	Dimensions int
}

// Embedder runs the model through an ONNX session.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	vocab      *wordPieceVocab
	dimensions int
}

// New loads the tokenizer and creates the inference session.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	if cfg.LibraryPath != "" {
		ort.SetSharedLibraryPath(cfg.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	vocab, err := loadVocab(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Embedder{session: session, vocab: vocab, dimensions: cfg.Dimensions}, nil
}

// Embed tokenizes, runs inference, mean-pools, and normalizes.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	tokens := e.vocab.tokenize(text)
	if len(tokens) > maxSequenceLen-2 {
		tokens = tokens[:maxSequenceLen-2]
	}

	inputIDs := make([]int64, maxSequenceLen)
	attentionMask := make([]int64, maxSequenceLen)
	tokenTypeIDs := make([]int64, maxSequenceLen)

	inputIDs[0] = int64(e.vocab.cls)
	attentionMask[0] = 1
	for i, tok := range tokens {
		inputIDs[i+1] = tok
		attentionMask[i+1] = 1
	}
	inputIDs[len(tokens)+1] = int64(e.vocab.sep)
	attentionMask[len(tokens)+1] = 1

	shape := ort.NewShape(1, maxSequenceLen)
	inputs := make([]ort.Value, 0, 3)
	for _, data := range [][]int64{inputIDs, attentionMask, tokenTypeIDs} {
		tensor, err := ort.NewTensor(shape, data)
		if err != nil {
			for _, in := range inputs {
				in.Destroy()
			}
			return nil, fmt.Errorf("create input tensor: %w", err)
		}
		inputs = append(inputs, tensor)
	}
	defer func() {
		for _, in := range inputs {
			in.Destroy()
		}
	}()

	outputs := []ort.Value{nil}
	if err := e.session.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	tensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	embedding, err := pool(tensor.GetData(), tensor.GetShape(), attentionMask, e.dimensions)
	if err != nil {
		return nil, err
	}
	return normalize(embedding), nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// Close releases the ONNX session.
func (e *Embedder) Close() error {
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// pool reduces the model output to one vector. A 2D output is already
// pooled; a 3D output is mean-pooled over attended positions.
func pool(data []float32, shape []int64, attentionMask []int64, dims int) ([]float32, error) {
	switch len(shape) {
	case 2:
		if len(data) < dims {
			return nil, fmt.Errorf("output dimension mismatch: got %d, want %d", len(data), dims)
		}
		out := make([]float32, dims)
		copy(out, data[:dims])
		return out, nil
	case 3:
		seqLen, hidden := int(shape[1]), int(shape[2])
		if hidden != dims {
			return nil, fmt.Errorf("hidden size mismatch: got %d, want %d", hidden, dims)
		}
		out := make([]float32, dims)
		var attended float32
		for i := 0; i < seqLen && i < len(attentionMask); i++ {
			if attentionMask[i] == 0 {
				continue
			}
			attended++
			offset := i * hidden
			for j := 0; j < hidden; j++ {
				out[j] += data[offset+j]
			}
		}
		if attended == 0 {
			return out, nil
		}
		for j := range out {
			out[j] /= attended
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected output shape: %v", shape)
	}
}

func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}
	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}

// wordPieceVocab is a minimal BERT WordPiece tokenizer: exact match first,
// then longest-prefix subword matching with the ## continuation marker.
type wordPieceVocab struct {
	ids map[string]int
	cls int
	sep int
	unk int
}

func loadVocab(path string) (*wordPieceVocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file struct {
		Model struct {
			Vocab map[string]int `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	return &wordPieceVocab{
		ids: file.Model.Vocab,
		cls: 101,
		sep: 102,
		unk: 100,
	}, nil
}

func (v *wordPieceVocab) tokenize(text string) []int64 {
	var tokens []int64
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if word == "" {
			continue
		}
		if id, ok := v.ids[word]; ok {
			tokens = append(tokens, int64(id))
			continue
		}
		for _, piece := range v.split(word) {
			if id, ok := v.ids[piece]; ok {
				tokens = append(tokens, int64(id))
			} else {
				tokens = append(tokens, int64(v.unk))
			}
		}
	}
	return tokens
}

func (v *wordPieceVocab) split(word string) []string {
	var pieces []string
	start := 0
	for start < len(word) {
		end := len(word)
		matched := false
		for end > start {
			piece := word[start:end]
			if start > 0 {
				piece = "##" + piece
			}
			if _, ok := v.ids[piece]; ok {
				pieces = append(pieces, piece)
				start = end
				matched = true
				break
			}
			end--
		}
		if !matched {
			pieces = append(pieces, "[UNK]")
			start++
		}
	}
	return pieces
}
