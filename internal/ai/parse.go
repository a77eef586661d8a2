package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrNoJSONObject = errors.New("no json object in response")

// ExtractJSONObject returns the first balanced {...} span of text. Braces
// inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end := balancedEnd(text, start); end > start {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoJSONObject
}

// DecodeJSONObject extracts the first object from text and decodes it into dst.
func DecodeJSONObject(text string, dst interface{}) error {
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(raw), dst)
}

func balancedEnd(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
