package tokens

import (
	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// Count returns the number of tokens of text for model. Models unknown to
// tiktoken are counted with cl100k_base.
func Count(model, text string) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, err
		}
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Counter returns Count bound to model.
func Counter(model string) func(string) (int, error) {
	return func(text string) (int, error) {
		return Count(model, text)
	}
}
