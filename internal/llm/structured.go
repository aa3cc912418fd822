package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// SchemaValidator checks a decoded reply. A non-nil error rejects it.
type SchemaValidator[T any] func(T) error

// DecodeReply pulls the first JSON object of type T out of model output.
// Prose and markdown fences around the object are ignored. When no
// candidate decodes cleanly, the text from the first brace is passed
// through jsonrepair, which closes truncated objects and drops trailing
// commas and comments.
func DecodeReply[T any](raw string, validate SchemaValidator[T]) (T, error) {
	var zero T

	text := dropFenceLines(raw)
	first := strings.IndexByte(text, '{')
	if first < 0 {
		return zero, fmt.Errorf("%w: no JSON object found in response", ErrInvalidOutput)
	}

	reply, ok := decodeFirstObject[T](text[first:])
	if !ok {
		repaired, err := jsonrepair.JSONRepair(text[first:])
		if err != nil {
			return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
		reply = zero
		if err := json.Unmarshal([]byte(repaired), &reply); err != nil {
			return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
		}
	}

	if validate != nil {
		if err := validate(reply); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return reply, nil
}

// decodeFirstObject tries the first brace, then any brace that opens a
// line. Braces nested inside a broken object are not candidates. The
// decoder stops at the end of the first value, so trailing prose is never
// read.
func decodeFirstObject[T any](s string) (T, bool) {
	for off := 0; off < len(s); off++ {
		if s[off] != '{' || (off > 0 && !opensLine(s, off)) {
			continue
		}
		var v T
		if err := json.NewDecoder(strings.NewReader(s[off:])).Decode(&v); err == nil {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func opensLine(s string, i int) bool {
	nl := strings.LastIndexByte(s[:i], '\n')
	return nl >= 0 && strings.TrimSpace(s[nl+1:i]) == ""
}

func dropFenceLines(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
