// Package wire builds and decodes the named tensor payloads exchanged with
// the inference server. It is pure data plumbing: no I/O, deterministic for a
// given input, and the buffer names/types/shapes are a fixed server contract.
package wire

import (
	"encoding/binary"
	"math"
)

// Server datatype identifiers carried alongside each buffer.
const (
	DTypeBytes  = "BYTES"
	DTypeUint32 = "UINT32"
	DTypeUint64 = "UINT64"
	DTypeInt32  = "INT32"
	DTypeFP32   = "FP32"
	DTypeBool   = "BOOL"
)

// Tensor is one named, typed, shaped value buffer. Data holds the raw
// little-endian payload; BYTES elements are 4-byte length prefixed.
type Tensor struct {
	Name     string
	Datatype string
	Shape    []int64
	Data     []byte
}

// Batch is the ordered set of tensors forming one request payload. It has no
// identity beyond the request that produced it.
type Batch struct {
	Tensors []Tensor
	// Control marks a streaming-control (stop) request rather than a
	// generation request; transports convey it out of band.
	Control bool
}

// Get returns the tensor with the given name, if present.
func (b *Batch) Get(name string) (Tensor, bool) {
	for _, t := range b.Tensors {
		if t.Name == name {
			return t, true
		}
	}
	return Tensor{}, false
}

func uint32Tensor(name string, v uint32) Tensor {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, v)
	return Tensor{Name: name, Datatype: DTypeUint32, Shape: []int64{1, 1}, Data: data}
}

func uint64Tensor(name string, v uint64) Tensor {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint64(data, v)
	return Tensor{Name: name, Datatype: DTypeUint64, Shape: []int64{1, 1}, Data: data}
}

func int32Tensor(name string, v int32) Tensor {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(v))
	return Tensor{Name: name, Datatype: DTypeInt32, Shape: []int64{1, 1}, Data: data}
}

func fp32Tensor(name string, v float32) Tensor {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, math.Float32bits(v))
	return Tensor{Name: name, Datatype: DTypeFP32, Shape: []int64{1, 1}, Data: data}
}

func boolTensor(name string, v bool) Tensor {
	data := []byte{0}
	if v {
		data[0] = 1
	}
	return Tensor{Name: name, Datatype: DTypeBool, Shape: []int64{1, 1}, Data: data}
}

// bytesTensor encodes a batch-of-one text element: 4-byte little-endian
// length prefix followed by the raw bytes.
func bytesTensor(name string, s string) Tensor {
	data := make([]byte, 4+len(s))
	binary.LittleEndian.PutUint32(data, uint32(len(s)))
	copy(data[4:], s)
	return Tensor{Name: name, Datatype: DTypeBytes, Shape: []int64{1, 1}, Data: data}
}
