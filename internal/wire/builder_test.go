package wire

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"trtbridge/pkg/types"
)

func validParams() types.GenerationParameters {
	p := types.DefaultParameters()
	p.Prompt = "Why is the sky blue?"
	p.MaxTokens = 300
	p.TopK = 40
	p.TopP = 0.9
	p.Temperature = 0.7
	p.Seed = 1234
	p.Stream = true
	return p
}

func TestBuildGenerate_Contract(t *testing.T) {
	b, err := BuildGenerate(validParams())
	if err != nil {
		t.Fatalf("BuildGenerate: %v", err)
	}
	if b.Control {
		t.Fatalf("generation batch must not be marked control")
	}

	want := []struct {
		name     string
		datatype string
	}{
		{"text_input", DTypeBytes},
		{"max_tokens", DTypeUint32},
		{"top_k", DTypeUint32},
		{"top_p", DTypeFP32},
		{"temperature", DTypeFP32},
		{"length_penalty", DTypeFP32},
		{"repetition_penalty", DTypeFP32},
		{"random_seed", DTypeUint64},
		{"beam_width", DTypeUint32},
		{"stream", DTypeBool},
	}
	if len(b.Tensors) != len(want) {
		t.Fatalf("got %d tensors, want %d", len(b.Tensors), len(want))
	}
	for i, w := range want {
		got := b.Tensors[i]
		if got.Name != w.name || got.Datatype != w.datatype {
			t.Fatalf("tensor %d = %s/%s, want %s/%s", i, got.Name, got.Datatype, w.name, w.datatype)
		}
		if !reflect.DeepEqual(got.Shape, []int64{1, 1}) {
			t.Fatalf("tensor %s shape = %v, want [1 1]", got.Name, got.Shape)
		}
	}
}

func TestBuildGenerate_Values(t *testing.T) {
	p := validParams()
	b, err := BuildGenerate(p)
	if err != nil {
		t.Fatalf("BuildGenerate: %v", err)
	}

	if tk, _ := b.Get("max_tokens"); binary.LittleEndian.Uint32(tk.Data) != 300 {
		t.Fatalf("max_tokens payload = %v", tk.Data)
	}
	if temp, _ := b.Get("temperature"); math.Float32frombits(binary.LittleEndian.Uint32(temp.Data)) != 0.7 {
		t.Fatalf("temperature payload = %v", temp.Data)
	}
	if seed, _ := b.Get("random_seed"); binary.LittleEndian.Uint64(seed.Data) != 1234 {
		t.Fatalf("random_seed payload = %v", seed.Data)
	}
	if st, _ := b.Get("stream"); st.Data[0] != 1 {
		t.Fatalf("stream payload = %v", st.Data)
	}
	text, _ := b.Get("text_input")
	if n := binary.LittleEndian.Uint32(text.Data); int(n) != len(p.Prompt) {
		t.Fatalf("text_input length prefix = %d, want %d", n, len(p.Prompt))
	}
	if string(text.Data[4:]) != p.Prompt {
		t.Fatalf("text_input payload = %q", text.Data[4:])
	}
}

func TestBuildGenerate_Deterministic(t *testing.T) {
	p := validParams()
	a, err := BuildGenerate(p)
	if err != nil {
		t.Fatalf("BuildGenerate: %v", err)
	}
	b, err := BuildGenerate(p)
	if err != nil {
		t.Fatalf("BuildGenerate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical parameters produced different batches")
	}
}

func TestBuildGenerate_Invalid(t *testing.T) {
	cases := map[string]func(*types.GenerationParameters){
		"zero max tokens": func(p *types.GenerationParameters) { p.MaxTokens = 0 },
		"negative top_p":  func(p *types.GenerationParameters) { p.TopP = -0.1 },
		"negative top_k":  func(p *types.GenerationParameters) { p.TopK = -1 },
		"zero beam width": func(p *types.GenerationParameters) { p.BeamWidth = 0 },
	}
	for name, mutate := range cases {
		p := validParams()
		mutate(&p)
		if _, err := BuildGenerate(p); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestBuildStop_Contract(t *testing.T) {
	b := BuildStop()
	if !b.Control {
		t.Fatalf("stop batch must be marked control")
	}
	want := []struct {
		name     string
		datatype string
	}{
		{"input_ids", DTypeInt32},
		{"input_lengths", DTypeInt32},
		{"request_output_len", DTypeUint32},
		{"stop", DTypeBool},
	}
	if len(b.Tensors) != len(want) {
		t.Fatalf("got %d tensors, want %d", len(b.Tensors), len(want))
	}
	for i, w := range want {
		if b.Tensors[i].Name != w.name || b.Tensors[i].Datatype != w.datatype {
			t.Fatalf("tensor %d = %s/%s, want %s/%s", i, b.Tensors[i].Name, b.Tensors[i].Datatype, w.name, w.datatype)
		}
	}
	if st, _ := b.Get("stop"); st.Data[0] != 1 {
		t.Fatalf("stop flag must be true")
	}
	if rl, _ := b.Get("request_output_len"); binary.LittleEndian.Uint32(rl.Data) != 0 {
		t.Fatalf("request_output_len must be zero")
	}
}
