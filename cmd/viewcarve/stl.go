package main

import (
	"bufio"
	"encoding/binary"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/viewcarve/viewcarve/pkg/kernel"
)

// writeSTLFile writes a mesh as binary STL. The 80-byte header carries the
// piece name, truncated if needed.
func writeSTLFile(path string, m *kernel.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	var header [80]byte
	copy(header[:], m.Name)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}

	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		n := r3.Unit(r3.Cross(r3.Sub(tri[1], tri[0]), r3.Sub(tri[2], tri[0])))
		rec := [12]float32{
			float32(n.X), float32(n.Y), float32(n.Z),
			float32(tri[0].X), float32(tri[0].Y), float32(tri[0].Z),
			float32(tri[1].X), float32(tri[1].Y), float32(tri[1].Z),
			float32(tri[2].X), float32(tri[2].Y), float32(tri[2].Z),
		}
		if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
			return err
		}
		// Attribute byte count, always zero.
		if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
			return err
		}
	}
	return w.Flush()
}
