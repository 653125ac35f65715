package mscfb

import "fmt"

// MiniFAT allocates the mini stream, the root entry's regular stream, in
// 64 byte mini sectors.
type MiniFAT struct {
	*AllocTable

	// StreamSectors is the root entry's regular chain, resolved once.
	StreamSectors []uint32
	StreamLen     uint64

	fat *FAT
}

// BuildMiniFAT reads the Mini-FAT from the regular chain starting at the
// header's first Mini-FAT sector and resolves the mini stream's sectors.
func BuildMiniFAT(fat *FAT, header *Header, root *DirEntry, validation Validation, diag *Diagnostics) (*MiniFAT, error) {
	table := NewAllocTable("MiniFAT", make([]uint32, 0))

	ids, err := fat.Collect(header.FirstMinifatSector)
	if err != nil {
		return nil, fmt.Errorf("mini FAT chain: %w", err)
	}
	if header.NumMinifatSectors != uint32(len(ids)) {
		err := fmt.Errorf("incorrect number of MiniFAT sectors (header says %v, FAT says %v): %w",
			header.NumMinifatSectors, len(ids), ErrStructural)
		if err := diag.check(validation, err); err != nil {
			return nil, err
		}
	}
	for _, id := range ids {
		buf, err := fat.sectors.ReadSector(id)
		if err != nil {
			return nil, err
		}
		table.appendSector(buf)
	}

	for len(table.Entries) > 0 && table.Entries[len(table.Entries)-1] == FREE_SECTOR {
		table.Entries = table.Entries[:len(table.Entries)-1]
	}

	streamSectors := make([]uint32, 0)
	if root.StreamSize > 0 {
		streamSectors, err = fat.Collect(root.StartingSector)
		if err != nil {
			return nil, fmt.Errorf("mini stream chain: %w", err)
		}
	}

	mini := &MiniFAT{
		AllocTable:    table,
		StreamSectors: streamSectors,
		StreamLen:     root.StreamSize,
		fat:           fat,
	}

	if err := mini.validate(); err != nil {
		if err := diag.check(validation, err); err != nil {
			return nil, err
		}
	}

	return mini, nil
}

func (m *MiniFAT) perSector() uint32 {
	return uint32(m.fat.sectors.SectorLen / MINI_SECTOR_LEN)
}

// Capacity returns the number of mini sectors the mini stream can hold.
func (m *MiniFAT) Capacity() uint32 {
	return uint32(len(m.StreamSectors)) * m.perSector()
}

func (m *MiniFAT) byteCapacity() uint64 {
	return uint64(m.Capacity()) * uint64(MINI_SECTOR_LEN)
}

func (m *MiniFAT) validate() error {
	if m.StreamLen%uint64(MINI_SECTOR_LEN) != 0 {
		return fmt.Errorf("root stream len is %v, but should be multiple of %v: %w", m.StreamLen, MINI_SECTOR_LEN, ErrStructural)
	}
	if uint32(len(m.Entries)) > m.Capacity() {
		return fmt.Errorf("miniFAT has %v entries, but root stream has only %v mini sectors: %w",
			len(m.Entries), m.Capacity(), ErrStructural)
	}
	return m.AllocTable.Validate()
}

// FileOffset returns where a mini sector lives in the file.
func (m *MiniFAT) FileOffset(miniSector uint32) (int64, error) {
	per := m.perSector()
	idx := miniSector / per
	if idx >= uint32(len(m.StreamSectors)) {
		return 0, sectorErr(m.Name, miniSector, "mini sector lies beyond the %v sector mini stream", len(m.StreamSectors))
	}

	return SectorOffset(m.StreamSectors[idx], m.fat.sectors.SectorLen) + int64(miniSector%per)*int64(MINI_SECTOR_LEN), nil
}

func (m *MiniFAT) readMini(miniSector uint32, within int64, p []byte) error {
	per := m.perSector()
	idx := miniSector / per
	if idx >= uint32(len(m.StreamSectors)) {
		return sectorErr(m.Name, miniSector, "mini sector lies beyond the %v sector mini stream", len(m.StreamSectors))
	}
	offset := int64(miniSector%per)*int64(MINI_SECTOR_LEN) + within
	_, err := m.fat.sectors.ReadWithinSector(m.StreamSectors[idx], offset, p)
	return err
}

// Read collects length bytes from the mini chain starting at start.
func (m *MiniFAT) Read(start uint32, length uint64) ([]byte, error) {
	if limit := m.byteCapacity(); length > limit {
		return nil, sectorErr(m.Name, start, "stream of %v bytes is longer than the %v byte mini stream", length, limit)
	}
	out := make([]byte, 0, length)

	walker := m.Chain(start)
	for uint64(len(out)) < length && walker.Next() {
		chunk := make([]byte, min(length-uint64(len(out)), uint64(MINI_SECTOR_LEN)))
		if err := m.readMini(walker.Sector(), 0, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	if err := walker.Err(); err != nil {
		return nil, err
	}
	if uint64(len(out)) < length {
		return nil, sectorErr(m.Name, start, "chain ended after %v of %v bytes", len(out), length)
	}

	return out, nil
}

// ReadAtIn reads into p starting at byte offset off of the mini stream chain ids.
func (m *MiniFAT) ReadAtIn(ids []uint32, p []byte, off int64) (int, error) {
	return readUnits(ids, MINI_SECTOR_LEN, p, off, m.readMini)
}
