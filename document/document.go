// Package document extracts plain text from uploaded files so the
// assembler can inject it as context. File parsing is a collaborator
// boundary: only a fixed set of content types is supported, and an
// unsupported type yields empty text rather than an error.
package document

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// Extractor turns an uploaded binary into plain text context.
type Extractor interface {
	// ExtractText returns the extracted text, or "" for unsupported
	// content types. A non-nil error means a supported type failed to
	// parse; callers degrade to no document context.
	ExtractText(ctx context.Context, data []byte, contentType string) (string, error)
}

// LoaderExtractor extracts text with langchaingo document loaders.
type LoaderExtractor struct{}

// NewLoaderExtractor creates the default extractor.
func NewLoaderExtractor() *LoaderExtractor {
	return &LoaderExtractor{}
}

// ExtractText dispatches on the (parameter-stripped) media type.
func (e *LoaderExtractor) ExtractText(ctx context.Context, data []byte, contentType string) (string, error) {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	var loader documentloaders.Loader
	switch strings.ToLower(mediaType) {
	case "application/pdf":
		loader = documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	case "text/plain", "text/markdown":
		loader = documentloaders.NewText(bytes.NewReader(data))
	case "text/csv":
		loader = documentloaders.NewCSV(bytes.NewReader(data))
	default:
		return "", nil
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load %s document: %w", mediaType, err)
	}

	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if text := strings.TrimSpace(doc.PageContent); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
