package invoice

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

var (
	truthyTokens = map[string]bool{"true": true, "yes": true, "y": true, "1": true, "with qr": true, "with": true}
	falsyTokens  = map[string]bool{"false": true, "no": true, "n": true, "0": true, "without qr": true, "without": true}
)

// PickText returns the first candidate that normalizes to non-empty text.
func PickText(candidates ...any) string {
	return defaultSanitizer.PickText(context.Background(), candidates...)
}

// PickNumber returns the first candidate coercible to a finite number.
func PickNumber(candidates ...any) (float64, bool) {
	return defaultSanitizer.PickNumber(context.Background(), candidates...)
}

// PickBoolean returns the first candidate that reads as a yes/no flag.
func PickBoolean(candidates ...any) (bool, bool) {
	return defaultSanitizer.PickBoolean(context.Background(), candidates...)
}

func (s *Sanitizer) PickText(ctx context.Context, candidates ...any) string {
	for _, candidate := range candidates {
		if text, ok := asText(s.Normalize(ctx, candidate)); ok {
			return text
		}
	}
	return ""
}

func (s *Sanitizer) PickNumber(ctx context.Context, candidates ...any) (float64, bool) {
	for _, candidate := range candidates {
		if n, ok := asNumber(s.Normalize(ctx, candidate)); ok {
			return n, true
		}
	}
	return 0, false
}

func (s *Sanitizer) PickBoolean(ctx context.Context, candidates ...any) (bool, bool) {
	for _, candidate := range candidates {
		if b, ok := asBoolean(s.Normalize(ctx, candidate)); ok {
			return b, true
		}
	}
	return false, false
}

// asText expects an already normalized value.
func asText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed, true
		}
		return "", false
	case json.Number:
		return v.String(), true
	}
	if n, ok := numeric(value); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	return "", false
}

// asNumber expects an already normalized value.
func asNumber(value any) (float64, bool) {
	if n, ok := numeric(value); ok {
		return n, true
	}
	text, ok := value.(string)
	if !ok {
		return 0, false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil || !isFinite(n) {
		return 0, false
	}
	return n, true
}

// asBoolean expects an already normalized value.
func asBoolean(value any) (bool, bool) {
	if b, ok := value.(bool); ok {
		return b, true
	}
	if n, ok := numeric(value); ok {
		switch n {
		case 1:
			return true, true
		case 0:
			return false, true
		}
		return false, false
	}
	text, ok := value.(string)
	if !ok {
		return false, false
	}
	token := strings.ToLower(strings.TrimSpace(text))
	switch {
	case truthyTokens[token]:
		return true, true
	case falsyTokens[token]:
		return false, true
	}
	return false, false
}

func numeric(value any) (float64, bool) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int8:
		n = float64(v)
	case int16:
		n = float64(v)
	case int32:
		n = float64(v)
	case int64:
		n = float64(v)
	case uint:
		n = float64(v)
	case uint8:
		n = float64(v)
	case uint16:
		n = float64(v)
	case uint32:
		n = float64(v)
	case uint64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	return n, isFinite(n)
}
