package wire

import (
	"encoding/binary"
	"strings"
)

// Response is a raw server response: the named output buffers plus the
// out-of-band flag marking the final chunk of a stream.
type Response struct {
	Outputs []Tensor
	Final   bool
}

// outputName is the buffer carrying generated text.
const outputName = "text_output"

// malformedResponseError reports an output buffer that cannot be decoded.
type malformedResponseError struct{ msg string }

func (e malformedResponseError) Error() string { return "malformed response: " + e.msg }

// ErrMalformedResponse constructs a malformedResponseError.
func ErrMalformedResponse(msg string) error { return malformedResponseError{msg: msg} }

// IsMalformedResponse reports whether err indicates an undecodable response buffer.
func IsMalformedResponse(err error) bool {
	_, ok := err.(malformedResponseError)
	return ok
}

// Decode extracts the generated text from a raw response. The boolean result
// reports whether a text_output buffer was present at all; a terminal chunk
// may legitimately carry only the final flag, which is not an error.
func Decode(r *Response) (string, bool, error) {
	var out *Tensor
	for i := range r.Outputs {
		if r.Outputs[i].Name == outputName {
			out = &r.Outputs[i]
			break
		}
	}
	if out == nil {
		return "", false, nil
	}
	if out.Datatype != DTypeBytes {
		return "", true, ErrMalformedResponse("text_output datatype " + out.Datatype)
	}
	// Concatenate every length-prefixed element in the buffer.
	var sb strings.Builder
	data := out.Data
	for len(data) > 0 {
		if len(data) < 4 {
			return "", true, ErrMalformedResponse("truncated text_output length prefix")
		}
		n := binary.LittleEndian.Uint32(data)
		data = data[4:]
		if uint32(len(data)) < n {
			return "", true, ErrMalformedResponse("truncated text_output element")
		}
		sb.Write(data[:n])
		data = data[n:]
	}
	return sb.String(), true, nil
}

// TextResponse builds a response carrying a single text_output element. Used
// by transports and tests to synthesize server chunks.
func TextResponse(text string, final bool) *Response {
	return &Response{
		Outputs: []Tensor{bytesTensor(outputName, text)},
		Final:   final,
	}
}

// FinalResponse builds a flag-only terminal chunk with no output buffer.
func FinalResponse() *Response {
	return &Response{Final: true}
}
