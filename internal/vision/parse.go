package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/trovato-shop/trovato/internal/domain"
)

// decodeModelJSON parses a JSON object out of a model reply. Models wrap
// answers in code fences or prose often enough that we locate the outermost
// object instead of decoding the raw reply.
func decodeModelJSON(reply string, out any) error {
	s := strings.TrimSpace(reply)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in model reply: %w", domain.ErrModelResponse)
	}

	if err := json.Unmarshal([]byte(s[start:end+1]), out); err != nil {
		return fmt.Errorf("decode model reply: %v: %w", err, domain.ErrModelResponse)
	}
	return nil
}
