package wire

import "strings"

// Instruction-closing delimiter and end-of-sequence marker of the llama
// instruct prompting convention.
const (
	instDelimiter = "[/INST]"
	endOfSequence = "</s>"
)

// TrimBatch isolates the newly generated continuation from a batch response:
// everything after the last [/INST] (the whole text, untouched, when the
// delimiter is absent), truncated at </s> when the marker is present.
func TrimBatch(s string) string {
	idx := strings.LastIndex(s, instDelimiter)
	if idx < 0 {
		if end := strings.Index(s, endOfSequence); end >= 0 {
			return strings.TrimSpace(s[:end])
		}
		return s
	}
	generated := s[idx+len(instDelimiter):]
	if end := strings.Index(generated, endOfSequence); end >= 0 {
		generated = generated[:end]
	}
	return strings.TrimSpace(generated)
}
