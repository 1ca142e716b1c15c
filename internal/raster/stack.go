package raster

import (
	"bufio"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// stackMagic identifies the binary stack format.
var stackMagic = [4]byte{'H', 'S', 'T', 'K'}

// Stack is a set of bands sharing one grid definition. A cell is a data cell
// only when every band holds data there; BuildStack enforces this by masking
// all bands with the shared nodata footprint.
type Stack struct {
	Def   Definition
	Names []string
	Bands [][]float64 // band-major, each row-major like Band.Values
}

// BuildStack aligns bands into a stack. All bands must share the first band's
// grid definition; callers resample beforehand. The shared nodata mask is
// applied so every band has the identical data footprint.
func BuildStack(bands []*Band) (*Stack, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("stack: no bands")
	}
	def := bands[0].Def
	s := &Stack{Def: def}
	for _, b := range bands {
		if !b.Def.AlignedWith(def) {
			return nil, fmt.Errorf("stack: band %q is on a different grid than %q", b.Name, bands[0].Name)
		}
		vals := make([]float64, len(b.Values))
		copy(vals, b.Values)
		s.Names = append(s.Names, b.Name)
		s.Bands = append(s.Bands, vals)
	}

	// intersect nodata footprints
	for i := 0; i < def.NumCells(); i++ {
		data := true
		for _, band := range s.Bands {
			if def.IsNodata(band[i]) {
				data = false
				break
			}
		}
		if !data {
			for _, band := range s.Bands {
				band[i] = def.Nodata
			}
		}
	}
	return s, nil
}

// NumBands returns the number of bands in the stack.
func (s *Stack) NumBands() int { return len(s.Bands) }

// Band returns the named band as a Band value, or nil if absent.
func (s *Stack) Band(name string) *Band {
	for i, n := range s.Names {
		if n == name {
			return &Band{Name: n, Def: s.Def, Values: s.Bands[i]}
		}
	}
	return nil
}

// BandAt returns band i as a Band value sharing the stack's storage.
func (s *Stack) BandAt(i int) *Band {
	return &Band{Name: s.Names[i], Def: s.Def, Values: s.Bands[i]}
}

// IsData reports whether cell i holds data in every band.
func (s *Stack) IsData(i int) bool {
	return len(s.Bands) > 0 && !s.Def.IsNodata(s.Bands[0][i])
}

// DataCells returns the indices of all data cells in row-major order.
func (s *Stack) DataCells() []int {
	var cells []int
	for i := 0; i < s.Def.NumCells(); i++ {
		if s.IsData(i) {
			cells = append(cells, i)
		}
	}
	return cells
}

// ValuesAt returns the predictor vector for cell i, in band order.
func (s *Stack) ValuesAt(i int) []float64 {
	v := make([]float64, len(s.Bands))
	for b, band := range s.Bands {
		v[b] = band[i]
	}
	return v
}

// ExtractAt returns the predictor vector for the cell containing (lon, lat).
// ok is false outside the grid or on a nodata cell.
func (s *Stack) ExtractAt(lon, lat float64) (v []float64, ok bool) {
	row, col, ok := s.Def.CellIndex(lon, lat)
	if !ok {
		return nil, false
	}
	i := row*s.Def.Ncols + col
	if !s.IsData(i) {
		return nil, false
	}
	return s.ValuesAt(i), true
}

type stackHeader struct {
	Def   Definition `json:"def"`
	Names []string   `json:"names"`
}

// WriteStack writes the stack as a binary file: a magic tag, a JSON header
// with the grid definition and band order, then each band as little-endian
// float64 values.
func (s *Stack) WriteStack(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write stack: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	hdr, err := json.Marshal(stackHeader{Def: s.Def, Names: s.Names})
	if err != nil {
		return fmt.Errorf("write stack: %w", err)
	}
	if _, err := w.Write(stackMagic[:]); err != nil {
		return fmt.Errorf("write stack: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(hdr))); err != nil {
		return fmt.Errorf("write stack: %w", err)
	}
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("write stack: %w", err)
	}
	buf := make([]byte, 8)
	for _, band := range s.Bands {
		for _, v := range band {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("write stack: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("write stack %s: %w", path, err)
	}
	return nil
}

// ReadStack reads a stack written by WriteStack.
func ReadStack(path string) (*Stack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read stack: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, fmt.Errorf("read stack %s: %w", path, err)
	}
	if magic != stackMagic {
		return nil, fmt.Errorf("read stack %s: bad magic %q", path, magic[:])
	}
	var hdrLen uint32
	if err := binary.Read(r, binary.LittleEndian, &hdrLen); err != nil {
		return nil, fmt.Errorf("read stack %s: %w", path, err)
	}
	hdrBytes := make([]byte, hdrLen)
	if _, err := io.ReadFull(r, hdrBytes); err != nil {
		return nil, fmt.Errorf("read stack %s: %w", path, err)
	}
	var hdr stackHeader
	if err := json.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, fmt.Errorf("read stack %s: header: %w", path, err)
	}

	s := &Stack{Def: hdr.Def, Names: hdr.Names}
	n := hdr.Def.NumCells()
	buf := make([]byte, 8)
	for range hdr.Names {
		band := make([]float64, n)
		for i := 0; i < n; i++ {
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, fmt.Errorf("read stack %s: truncated band data: %w", path, err)
			}
			band[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf))
		}
		s.Bands = append(s.Bands, band)
	}
	return s, nil
}

// WriteLayersCSV records the band order as a CSV of index and name.
func (s *Stack) WriteLayersCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write layers csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"band", "name"}); err != nil {
		return fmt.Errorf("write layers csv: %w", err)
	}
	for i, name := range s.Names {
		if err := w.Write([]string{strconv.Itoa(i + 1), name}); err != nil {
			return fmt.Errorf("write layers csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write layers csv %s: %w", path, err)
	}
	return nil
}
