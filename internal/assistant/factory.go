package assistant

import (
	"fmt"
	"strings"
	"time"
)

// questionTTL is how long generated questions are reused.
const questionTTL = 30 * time.Minute

// New builds the assistant for a provider name. "openai" uses the model
// with the heuristic as fallback; "" or "none" uses the heuristic only.
func New(provider string, cfg Config) (Assistant, error) {
	switch strings.ToLower(provider) {
	case "openai":
		primary, err := NewOpenAI(cfg)
		if err != nil {
			return nil, err
		}
		return NewCached(&WithFallback{Primary: primary, Fallback: Fallback{}}, questionTTL), nil

	case "", "none":
		return Fallback{}, nil

	default:
		return nil, fmt.Errorf("unknown assistant provider: %s (supported: openai, none)", provider)
	}
}
