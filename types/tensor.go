package types

import "fmt"

// Tensor is a row-major n-dimensional array of float64.
// All observation fields are carried as tensors so that episodes can be
// stacked, concatenated and serialized uniformly.
type Tensor struct {
	Shape []int
	Data  []float64
}

// Scalar wraps a single value as a 0-dimensional tensor.
func Scalar(v float64) Tensor {
	return Tensor{Shape: []int{}, Data: []float64{v}}
}

// FromBool encodes a bool as a 0-dimensional tensor (0 or 1).
func FromBool(b bool) Tensor {
	if b {
		return Scalar(1)
	}
	return Scalar(0)
}

// OneHot returns a length-n vector with a single 1 at index i.
func OneHot(i, n int) Tensor {
	data := make([]float64, n)
	if i >= 0 && i < n {
		data[i] = 1
	}
	return Tensor{Shape: []int{n}, Data: data}
}

// Vector wraps a slice as a 1-dimensional tensor. The slice is not copied.
func Vector(v []float64) Tensor {
	return Tensor{Shape: []int{len(v)}, Data: v}
}

// Numel returns the number of elements implied by the shape.
func (t Tensor) Numel() int {
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

// Bool reads a 0-dimensional tensor as a bool.
func (t Tensor) Bool() bool {
	return len(t.Data) > 0 && t.Data[0] != 0
}

// Value reads a 0-dimensional tensor as a float64.
func (t Tensor) Value() float64 {
	if len(t.Data) == 0 {
		return 0
	}
	return t.Data[0]
}

// Clone returns a deep copy.
func (t Tensor) Clone() Tensor {
	return Tensor{
		Shape: append([]int(nil), t.Shape...),
		Data:  append([]float64(nil), t.Data...),
	}
}

// Equal compares shape and data exactly.
func (t Tensor) Equal(other Tensor) bool {
	if len(t.Shape) != len(other.Shape) || len(t.Data) != len(other.Data) {
		return false
	}
	for i, d := range t.Shape {
		if other.Shape[i] != d {
			return false
		}
	}
	for i, v := range t.Data {
		if other.Data[i] != v {
			return false
		}
	}
	return true
}

// Stack combines tensors of identical shape into one tensor with a new
// leading axis of length len(ts).
func Stack(ts []Tensor) (Tensor, error) {
	if len(ts) == 0 {
		return Tensor{}, fmt.Errorf("stack: no tensors")
	}
	row := ts[0].Numel()
	out := Tensor{
		Shape: append([]int{len(ts)}, ts[0].Shape...),
		Data:  make([]float64, 0, len(ts)*row),
	}
	for _, t := range ts {
		if t.Numel() != row {
			return Tensor{}, fmt.Errorf("stack: mismatched element counts %d != %d", t.Numel(), row)
		}
		out.Data = append(out.Data, t.Data...)
	}
	return out, nil
}

// Concat joins tensors along axis 0. Shapes must agree on all other axes.
func Concat(ts []Tensor) (Tensor, error) {
	if len(ts) == 0 {
		return Tensor{}, fmt.Errorf("concat: no tensors")
	}
	first := ts[0]
	if len(first.Shape) == 0 {
		return Tensor{}, fmt.Errorf("concat: cannot concatenate scalars")
	}
	rows := 0
	total := 0
	for _, t := range ts {
		if len(t.Shape) != len(first.Shape) {
			return Tensor{}, fmt.Errorf("concat: rank mismatch %d != %d", len(t.Shape), len(first.Shape))
		}
		for i := 1; i < len(first.Shape); i++ {
			if t.Shape[i] != first.Shape[i] {
				return Tensor{}, fmt.Errorf("concat: shape mismatch on axis %d", i)
			}
		}
		rows += t.Shape[0]
		total += len(t.Data)
	}
	out := Tensor{
		Shape: append([]int{rows}, first.Shape[1:]...),
		Data:  make([]float64, 0, total),
	}
	for _, t := range ts {
		out.Data = append(out.Data, t.Data...)
	}
	return out, nil
}

// TransposeToLast moves axis 0 to the trailing position, e.g. a
// (N, H, W, C) image batch becomes (H, W, C, N). Used for the shard layout
// transform before compression.
func (t Tensor) TransposeToLast() Tensor {
	if len(t.Shape) < 2 {
		return t.Clone()
	}
	n := t.Shape[0]
	rest := t.Numel() / n
	out := Tensor{
		Shape: append(append([]int(nil), t.Shape[1:]...), n),
		Data:  make([]float64, len(t.Data)),
	}
	for i := 0; i < n; i++ {
		for j := 0; j < rest; j++ {
			out.Data[j*n+i] = t.Data[i*rest+j]
		}
	}
	return out
}
