package mscfb

import "fmt"

// FAT is the regular sector allocation table bound to the file it indexes.
type FAT struct {
	*AllocTable
	sectors *Sectors
}

// BuildFAT concatenates the FAT sectors listed by the DIFAT into one table.
func BuildFAT(sectors *Sectors, difat *DIFAT) (*FAT, error) {
	table := NewAllocTable("FAT", make([]uint32, 0, len(difat.FatSectors)*sectors.EntriesPerSector()))

	for _, sectorId := range difat.FatSectors {
		if sectorId >= sectors.NumSectors {
			return nil, sectorErr("DIFAT", sectorId, "FAT sector index out of range, file has %v sectors", sectors.NumSectors)
		}

		buf, err := sectors.ReadSector(sectorId)
		if err != nil {
			return nil, err
		}
		table.appendSector(buf)
	}

	return &FAT{
		AllocTable: table,
		sectors:    sectors,
	}, nil
}

// trim drops the trailing FREE_SECTOR entries of the last FAT sector.
// Permissive mode also drops the zero entries some writers leave for sectors
// past the end of the file.
func (f *FAT) trim(validation Validation) {
	if !validation.IsStrict() {
		for len(f.Entries) > int(f.sectors.NumSectors) && f.Entries[len(f.Entries)-1] == 0 {
			f.Entries = f.Entries[:len(f.Entries)-1]
		}
	}
	for len(f.Entries) > 0 && f.Entries[len(f.Entries)-1] == FREE_SECTOR {
		f.Entries = f.Entries[:len(f.Entries)-1]
	}
}

// validate checks the table against the file it indexes.
func (f *FAT) validate() error {
	if len(f.Entries) > int(f.sectors.NumSectors) {
		return fmt.Errorf("FAT has %v entries, but file has %v sectors: %w", len(f.Entries), f.sectors.NumSectors, ErrStructural)
	}
	return f.AllocTable.Validate()
}

// SectorLen returns the unit this table allocates in.
func (f *FAT) SectorLen() int {
	return f.sectors.SectorLen
}

// Read collects length bytes from the chain starting at start.
func (f *FAT) Read(start uint32, length uint64) ([]byte, error) {
	sectorLen := uint64(f.sectors.SectorLen)
	if limit := uint64(len(f.Entries)) * sectorLen; length > limit {
		return nil, sectorErr(f.Name, start, "stream of %v bytes is longer than the %v bytes the table addresses", length, limit)
	}
	out := make([]byte, 0, length)

	walker := f.Chain(start)
	for uint64(len(out)) < length && walker.Next() {
		n := min(length-uint64(len(out)), sectorLen)
		chunk := make([]byte, n)
		if _, err := f.sectors.ReadWithinSector(walker.Sector(), 0, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
	if err := walker.Err(); err != nil {
		return nil, err
	}
	if uint64(len(out)) < length {
		return nil, sectorErr(f.Name, start, "chain ended after %v of %v bytes", len(out), length)
	}

	return out, nil
}

// ReadChain returns the full content of every sector of the chain.
func (f *FAT) ReadChain(start uint32) ([]byte, error) {
	ids, err := f.Collect(start)
	if err != nil {
		return nil, err
	}

	out := make([]byte, len(ids)*f.sectors.SectorLen)
	for i, id := range ids {
		if _, err := f.sectors.ReadWithinSector(id, 0, out[i*f.sectors.SectorLen:(i+1)*f.sectors.SectorLen]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ReadAtIn reads into p starting at byte offset off of the stream whose
// sectors are ids.
func (f *FAT) ReadAtIn(ids []uint32, p []byte, off int64) (int, error) {
	return readUnits(ids, f.sectors.SectorLen, p, off, func(id uint32, within int64, dst []byte) error {
		_, err := f.sectors.ReadWithinSector(id, within, dst)
		return err
	})
}

// readUnits maps a byte range onto a list of fixed size units and reads each
// piece through read.
func readUnits(ids []uint32, unitLen int, p []byte, off int64, read func(id uint32, within int64, dst []byte) error) (int, error) {
	total := 0
	for total < len(p) {
		pos := off + int64(total)
		idx := pos / int64(unitLen)
		if idx >= int64(len(ids)) {
			break
		}
		within := pos % int64(unitLen)
		n := len(p) - total
		if rest := unitLen - int(within); n > rest {
			n = rest
		}
		if err := read(ids[idx], within, p[total:total+n]); err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
