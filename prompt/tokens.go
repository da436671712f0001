package prompt

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenCounter counts tokens with the cl100k_base encoding. Close
// enough for budgeting across the model families in use; exactness does
// not matter here, only monotonicity.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter loads the encoding.
func NewTiktokenCounter() (*TiktokenCounter, error) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("load cl100k_base encoding: %w", err)
	}
	return &TiktokenCounter{enc: enc}, nil
}

// Count returns the token count of text.
func (c *TiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
