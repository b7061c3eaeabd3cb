package wire

import (
	"fmt"

	"trtbridge/pkg/types"
)

// BuildGenerate converts a validated parameter set into the generation
// request batch. Each buffer appears exactly once, with the exact name, type
// and shape the server expects. Pure and deterministic.
func BuildGenerate(p types.GenerationParameters) (*Batch, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return &Batch{
		Tensors: []Tensor{
			bytesTensor("text_input", p.Prompt),
			uint32Tensor("max_tokens", uint32(p.MaxTokens)),
			uint32Tensor("top_k", uint32(p.TopK)),
			fp32Tensor("top_p", p.TopP),
			fp32Tensor("temperature", p.Temperature),
			fp32Tensor("length_penalty", p.LengthPenalty),
			fp32Tensor("repetition_penalty", p.RepetitionPenalty),
			uint64Tensor("random_seed", p.Seed),
			uint32Tensor("beam_width", uint32(p.BeamWidth)),
			boolTensor("stream", p.Stream),
		},
	}, nil
}

// BuildStop builds the control batch that tells the server to abandon an
// in-progress generation: zero-length stop-control buffers plus a true stop
// flag, marked Control so the transport tags it as a streaming-stop request.
func BuildStop() *Batch {
	return &Batch{
		Control: true,
		Tensors: []Tensor{
			int32Tensor("input_ids", 0),
			int32Tensor("input_lengths", 0),
			uint32Tensor("request_output_len", 0),
			boolTensor("stop", true),
		},
	}
}
