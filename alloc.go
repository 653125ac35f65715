package mscfb

import (
	"encoding/binary"
	"fmt"
)

// AllocTable maps a sector index to the next sector of its chain. The FAT
// and the Mini-FAT are both instances of it; they only differ in the unit
// the indices address.
type AllocTable struct {
	Name    string
	Entries []uint32
}

func NewAllocTable(name string, entries []uint32) *AllocTable {
	return &AllocTable{
		Name:    name,
		Entries: entries,
	}
}

// appendSector decodes one sector worth of little endian table entries.
func (a *AllocTable) appendSector(sector []byte) {
	for i := 0; i+4 <= len(sector); i += 4 {
		a.Entries = append(a.Entries, binary.LittleEndian.Uint32(sector[i:]))
	}
}

func (a *AllocTable) Len() int {
	return len(a.Entries)
}

// Next returns the entry following index. Sentinels are returned as they are
// stored, except that a regular value pointing outside the table is an error.
func (a *AllocTable) Next(index uint32) (uint32, error) {
	if index > MAX_REGULAR_SECTOR || index >= uint32(len(a.Entries)) {
		return 0, sectorErr(a.Name, index, "index out of range, table has %v entries", len(a.Entries))
	}

	nextId := a.Entries[index]
	if nextId <= MAX_REGULAR_SECTOR && nextId >= uint32(len(a.Entries)) {
		return 0, sectorErr(a.Name, index, "invalid next index %v, table has %v entries", nextId, len(a.Entries))
	}

	return nextId, nil
}

// Chain starts a lazy walk of the chain beginning at start.
func (a *AllocTable) Chain(start uint32) *ChainWalker {
	return newChainWalker(a.Name, start, len(a.Entries), a.nextInChain)
}

func (a *AllocTable) nextInChain(index uint32) (uint32, error) {
	next, err := a.Next(index)
	if err != nil {
		return 0, err
	}
	if next > MAX_REGULAR_SECTOR && next != END_OF_CHAIN {
		return 0, sectorErr(a.Name, index, "chain continues into reserved value 0x%08X", next)
	}
	return next, nil
}

// Collect materialises the chain starting at start.
func (a *AllocTable) Collect(start uint32) ([]uint32, error) {
	return a.Chain(start).All()
}

// Validate checks that every regular entry stays inside the table and that no
// sector is the successor of two different sectors.
func (a *AllocTable) Validate() error {
	pointees := make(map[uint32]bool)
	for idx, next := range a.Entries {
		if next <= MAX_REGULAR_SECTOR {
			if next >= uint32(len(a.Entries)) {
				return sectorErr(a.Name, uint32(idx), "points to %v, but table has only %v entries", next, len(a.Entries))
			}
			if pointees[next] {
				return sectorErr(a.Name, uint32(idx), "points to %v, which is already pointed to by another entry", next)
			}
			pointees[next] = true
		} else if next == INVALID_SECTOR {
			return sectorErr(a.Name, uint32(idx), "holds the reserved value 0x%08X", next)
		}
	}

	return nil
}

// Counts returns how many entries are free, end of chain, reserved markers or
// regular links. Used by the diagnostic summaries.
func (a *AllocTable) Counts() map[string]int {
	counts := map[string]int{"free": 0, "end_of_chain": 0, "fat": 0, "difat": 0, "regular": 0}
	for _, e := range a.Entries {
		switch {
		case e == FREE_SECTOR:
			counts["free"]++
		case e == END_OF_CHAIN:
			counts["end_of_chain"]++
		case e == FAT_SECTOR:
			counts["fat"]++
		case e == DIFAT_SECTOR:
			counts["difat"]++
		case e <= MAX_REGULAR_SECTOR:
			counts["regular"]++
		}
	}
	return counts
}

func (a *AllocTable) String() string {
	return fmt.Sprintf("%s(%d entries)", a.Name, len(a.Entries))
}
