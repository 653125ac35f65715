package mscfb

import (
	"errors"
	"fmt"
	"io"
)

// SectorLen returns the size in bytes of a sector with the given shift.
func SectorLen(shift uint16) int {
	return 1 << shift
}

// SectorOffset returns the file offset of a regular sector. Sector 0 starts
// right after the header block, which occupies one sector-sized slot.
func SectorOffset(sectorId uint32, sectorLen int) int64 {
	return (int64(sectorId) + 1) * int64(sectorLen)
}

// Sectors is the random access view over the file, addressed in sectors.
type Sectors struct {
	SectorLen  int
	NumSectors uint32
	Length     int64

	inner io.ReaderAt
}

func NewSectors(sectorLen int, bufferLength int64, reader io.ReaderAt) *Sectors {
	numSectors := ((bufferLength + int64(sectorLen) - 1) / int64(sectorLen)) - 1
	if numSectors < 0 {
		numSectors = 0
	}

	return &Sectors{
		SectorLen:  sectorLen,
		NumSectors: uint32(numSectors),
		Length:     bufferLength,
		inner:      reader,
	}
}

// EntriesPerSector is the number of 32-bit table entries one sector holds.
func (s *Sectors) EntriesPerSector() int {
	return s.SectorLen / 4
}

// ReadSector returns the full content of a sector. A final sector that is cut
// short by the end of the file is zero padded.
func (s *Sectors) ReadSector(sectorId uint32) ([]byte, error) {
	buf := make([]byte, s.SectorLen)
	_, err := s.ReadWithinSector(sectorId, 0, buf)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadWithinSector reads len(p) bytes starting at offset within a sector.
func (s *Sectors) ReadWithinSector(sectorId uint32, offset int64, p []byte) (int, error) {
	if sectorId > MAX_REGULAR_SECTOR || sectorId >= s.NumSectors {
		return 0, sectorErr("file", sectorId, "tried to read sector %v, but sector count is only %v", sectorId, s.NumSectors)
	}
	if offset < 0 || offset+int64(len(p)) > int64(s.SectorLen) {
		return 0, sectorErr("file", sectorId, "read of %v bytes at offset %v crosses the sector boundary", len(p), offset)
	}

	return s.readAt(p, SectorOffset(sectorId, s.SectorLen)+offset)
}

func (s *Sectors) readAt(p []byte, off int64) (int, error) {
	n, err := s.inner.ReadAt(p, off)
	if err != nil && !(errors.Is(err, io.EOF) && off+int64(len(p)) > s.Length) {
		return n, fmt.Errorf("read %v bytes at offset %v: %v: %w", len(p), off, err, ErrIO)
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
