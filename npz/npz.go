// Package npz reads and writes the numpy zip archives the training pipeline
// consumes. Writing encodes the small npy v1.0 header by hand so that
// n-dimensional shapes survive; reading goes through the npyio codec.
package npz

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/sbinet/npyio"

	"github.com/grid-rl/trajgen/types"
)

var npyMagic = []byte{'\x93', 'N', 'U', 'M', 'P', 'Y'}

// Write serializes the fields as one deflated .npy entry each, in sorted
// field order so archives are byte-reproducible.
func Write(w io.Writer, fields map[string]types.Tensor) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(w)
	for _, name := range names {
		ew, err := zw.CreateHeader(&zip.FileHeader{
			Name:   name + ".npy",
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("npz: create entry %s: %w", name, err)
		}
		if err := writeNpy(ew, fields[name]); err != nil {
			return fmt.Errorf("npz: write entry %s: %w", name, err)
		}
	}
	return zw.Close()
}

// Read loads every array in an npz file.
func Read(path string) (map[string]types.Tensor, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("npz: open %s: %w", path, err)
	}
	defer zr.Close()

	fields := make(map[string]types.Tensor, len(zr.File))
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, ".npy")
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("npz: open entry %s: %w", f.Name, err)
		}
		t, err := readNpy(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("npz: read entry %s: %w", f.Name, err)
		}
		fields[name] = t
	}
	return fields, nil
}

// writeNpy emits an npy v1.0 little-endian float64 array in C order.
func writeNpy(w io.Writer, t types.Tensor) error {
	if len(t.Data) != t.Numel() {
		return fmt.Errorf("tensor has %d elements, shape wants %d", len(t.Data), t.Numel())
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': %s, }", shapeTuple(t.Shape))
	// magic + version + length field + header + '\n' padded to 64 bytes
	pad := 64 - (len(npyMagic)+2+2+len(header)+1)%64
	if pad == 64 {
		pad = 0
	}
	header += strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.Write(npyMagic)
	buf.Write([]byte{1, 0})
	var hlen [2]byte
	binary.LittleEndian.PutUint16(hlen[:], uint16(len(header)))
	buf.Write(hlen[:])
	buf.WriteString(header)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	data := make([]byte, 8*len(t.Data))
	for i, v := range t.Data {
		binary.LittleEndian.PutUint64(data[i*8:], math.Float64bits(v))
	}
	_, err := w.Write(data)
	return err
}

// readNpy decodes one array through npyio, keeping the shape from its
// header.
func readNpy(r io.Reader) (types.Tensor, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return types.Tensor{}, err
	}
	shape := append([]int(nil), nr.Header.Descr.Shape...)
	var data []float64
	if err := nr.Read(&data); err != nil {
		return types.Tensor{}, err
	}
	return types.Tensor{Shape: shape, Data: data}, nil
}

// shapeTuple renders a shape as a python tuple literal: (), (3,), (3, 4).
func shapeTuple(shape []int) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	default:
		parts := make([]string, len(shape))
		for i, d := range shape {
			parts[i] = fmt.Sprintf("%d", d)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
}
