// Package matfile reads and writes the named-array container files the
// training and analysis drivers exchange: float64 matrices and string
// lists keyed by name, gob-encoded so numeric values round-trip exactly.
package matfile

import (
	"encoding/gob"
	"os"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Array is a dense row-major float64 matrix. Vectors are stored as n x 1.
type Array struct {
	Rows int
	Cols int
	Data []float64
}

// File is a collection of named arrays and named string lists.
type File struct {
	Arrays  map[string]Array
	Strings map[string][]string
}

// New returns an empty file.
func New() *File {
	return &File{
		Arrays:  make(map[string]Array),
		Strings: make(map[string][]string),
	}
}

// SetMatrix stores a matrix under the given name.
func (f *File) SetMatrix(name string, m mat.Matrix) {
	r, c := m.Dims()
	a := Array{Rows: r, Cols: c, Data: make([]float64, 0, r*c)}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			a.Data = append(a.Data, m.At(i, j))
		}
	}
	f.Arrays[name] = a
}

// SetVector stores a vector under the given name as an n x 1 array.
func (f *File) SetVector(name string, v []float64) {
	f.Arrays[name] = Array{Rows: len(v), Cols: 1, Data: append([]float64{}, v...)}
}

// SetStrings stores a string list under the given name.
func (f *File) SetStrings(name string, values []string) {
	f.Strings[name] = append([]string{}, values...)
}

// Matrix retrieves a named array as a dense matrix.
func (f *File) Matrix(name string) (*mat.Dense, error) {
	a, ok := f.Arrays[name]
	if !ok {
		return nil, errors.Errorf("no array named %q", name)
	}
	return mat.NewDense(a.Rows, a.Cols, append([]float64{}, a.Data...)), nil
}

// Vector retrieves a named array as a flat slice, accepting either a
// single-column or single-row layout.
func (f *File) Vector(name string) ([]float64, error) {
	a, ok := f.Arrays[name]
	if !ok {
		return nil, errors.Errorf("no array named %q", name)
	}
	if a.Rows != 1 && a.Cols != 1 {
		return nil, errors.Errorf("array %q is %dx%d, not a vector", name, a.Rows, a.Cols)
	}
	return append([]float64{}, a.Data...), nil
}

// StringList retrieves a named string list.
func (f *File) StringList(name string) ([]string, error) {
	s, ok := f.Strings[name]
	if !ok {
		return nil, errors.Errorf("no string list named %q", name)
	}
	return s, nil
}

// Save writes the file to disk.
func Save(filename string, f *File) error {
	out, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "creating %s", filename)
	}
	defer out.Close()
	if err := gob.NewEncoder(out).Encode(f); err != nil {
		return errors.Wrapf(err, "encoding %s", filename)
	}
	return nil
}

// Load reads a file written by Save.
func Load(filename string) (*File, error) {
	in, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", filename)
	}
	defer in.Close()
	f := New()
	if err := gob.NewDecoder(in).Decode(f); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", filename)
	}
	return f, nil
}
