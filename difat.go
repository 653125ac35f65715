package mscfb

import (
	"encoding/binary"
	"fmt"
)

// DIFAT lists the sectors holding the FAT, in table order, and the sectors the
// DIFAT itself occupies beyond the header.
type DIFAT struct {
	FatSectors   []uint32
	DifatSectors []uint32
}

// ResolveDIFAT combines the 109 header entries with the chained DIFAT
// sectors. FREE_SECTOR entries are skipped.
func ResolveDIFAT(sectors *Sectors, header *Header, validation Validation, diag *Diagnostics) (*DIFAT, error) {
	difat := &DIFAT{
		FatSectors:   make([]uint32, 0, header.NumFatSectors),
		DifatSectors: make([]uint32, 0, header.NumDifatSectors),
	}

	if err := difat.add(header.InitialDifatEntries[:], "header", 0); err != nil {
		return nil, err
	}

	perSector := sectors.EntriesPerSector() - 1
	var current []byte

	walker := newChainWalker("DIFAT", header.FirstDifatSector, int(sectors.NumSectors), func(uint32) (uint32, error) {
		next := binary.LittleEndian.Uint32(current[perSector*4:])
		// The last DIFAT sector is sometimes terminated with FREE_SECTOR.
		if next == FREE_SECTOR {
			next = END_OF_CHAIN
		}
		return next, nil
	})

	for walker.Next() {
		sectorId := walker.Sector()
		buf, err := sectors.ReadSector(sectorId)
		if err != nil {
			return nil, err
		}
		current = buf
		difat.DifatSectors = append(difat.DifatSectors, sectorId)

		entries := make([]uint32, perSector)
		for i := range entries {
			entries[i] = binary.LittleEndian.Uint32(buf[i*4:])
		}
		if err := difat.add(entries, "DIFAT", sectorId); err != nil {
			return nil, err
		}
	}
	if err := walker.Err(); err != nil {
		return nil, err
	}

	if header.NumDifatSectors != uint32(len(difat.DifatSectors)) {
		err := fmt.Errorf("incorrect DIFAT chain length (header says %v, actual is %v): %w",
			header.NumDifatSectors, len(difat.DifatSectors), ErrStructural)
		if err := diag.check(validation, err); err != nil {
			return nil, err
		}
	}

	if header.NumFatSectors != uint32(len(difat.FatSectors)) {
		err := fmt.Errorf("incorrect number of FAT sectors (header says %v, DIFAT says %v): %w",
			header.NumFatSectors, len(difat.FatSectors), ErrStructural)
		if err := diag.check(validation, err); err != nil {
			return nil, err
		}
	}

	return difat, nil
}

func (d *DIFAT) add(entries []uint32, table string, sectorId uint32) error {
	for _, next := range entries {
		if next == FREE_SECTOR {
			continue
		}
		if next > MAX_REGULAR_SECTOR {
			return sectorErr(table, sectorId, "DIFAT refers to invalid sector index 0x%08X", next)
		}
		d.FatSectors = append(d.FatSectors, next)
	}
	return nil
}

// CheckMarks verifies that the FAT marks every DIFAT sector as DIFAT_SECTOR
// and every FAT sector as FAT_SECTOR. Permissive mode repairs the marks.
func (d *DIFAT) CheckMarks(fat *AllocTable, validation Validation, diag *Diagnostics) error {
	check := func(ids []uint32, want uint32, what string) error {
		for _, id := range ids {
			if id >= uint32(len(fat.Entries)) {
				return sectorErr(fat.Name, id, "FAT has %v entries, but DIFAT lists %v as a %s sector", len(fat.Entries), id, what)
			}
			if fat.Entries[id] != want {
				err := sectorErr(fat.Name, id, "%s sector is not marked as such in the FAT (found 0x%08X)", what, fat.Entries[id])
				if err := diag.check(validation, err); err != nil {
					return err
				}
				fat.Entries[id] = want
			}
		}
		return nil
	}

	if err := check(d.DifatSectors, DIFAT_SECTOR, "DIFAT"); err != nil {
		return err
	}
	return check(d.FatSectors, FAT_SECTOR, "FAT")
}
