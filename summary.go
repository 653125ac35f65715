package mscfb

import (
	"fmt"
	"strings"
)

func idList(ids []uint32) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = sectorString(id)
	}
	return strings.Join(parts, ", ")
}

// HeaderSummary describes the header fields.
func (c *CompoundFile) HeaderSummary() []KeyValue {
	h := c.Header
	return []KeyValue{
		kv("Signature", "% X", h.Signature[:]),
		kv("CLSID", "%v", h.ClassID()),
		kv("Minor version", "0x%04X", h.MinorVersion),
		kv("Major version", "%d", h.MajorVersion),
		kv("Byte order", "0x%04X", h.ByteOrder),
		kv("Sector shift", "%d (%d bytes)", h.SectorShift, h.SectorLen()),
		kv("Mini sector shift", "%d (%d bytes)", h.MiniSectorShift, h.MiniSectorLen()),
		kv("Directory sectors", "%d", h.NumDirSectors),
		kv("FAT sectors", "%d", h.NumFatSectors),
		kv("First directory sector", "%s", sectorString(h.FirstDirSector)),
		kv("Transaction signature", "%d", h.TransactionSignature),
		kv("Mini stream cutoff", "%d", h.MiniStreamCutoff),
		kv("First MiniFAT sector", "%s", sectorString(h.FirstMinifatSector)),
		kv("MiniFAT sectors", "%d", h.NumMinifatSectors),
		kv("First DIFAT sector", "%s", sectorString(h.FirstDifatSector)),
		kv("DIFAT sectors", "%d", h.NumDifatSectors),
		kv("File sectors", "%d", c.sectors.NumSectors),
		kv("File size", "%d", c.sectors.Length),
	}
}

func tableSummary(t *AllocTable) []KeyValue {
	counts := t.Counts()
	return []KeyValue{
		kv("Entries", "%d", t.Len()),
		kv("Regular", "%d", counts["regular"]),
		kv("End of chain", "%d", counts["end_of_chain"]),
		kv("Free", "%d", counts["free"]),
		kv("FAT", "%d", counts["fat"]),
		kv("DIFAT", "%d", counts["difat"]),
	}
}

// FATSummary describes the regular allocation table.
func (c *CompoundFile) FATSummary() []KeyValue {
	out := []KeyValue{kv("Sector size", "%d", c.FAT.SectorLen())}
	return append(out, tableSummary(c.FAT.AllocTable)...)
}

// DIFATSummary lists the sectors holding the FAT and the DIFAT.
func (c *CompoundFile) DIFATSummary() []KeyValue {
	return []KeyValue{
		kv("FAT sector count", "%d", len(c.DIFAT.FatSectors)),
		kv("FAT sectors", "%s", idList(c.DIFAT.FatSectors)),
		kv("DIFAT sector count", "%d", len(c.DIFAT.DifatSectors)),
		kv("DIFAT sectors", "%s", idList(c.DIFAT.DifatSectors)),
	}
}

// MiniFATSummary describes the mini allocation table and the mini stream.
func (c *CompoundFile) MiniFATSummary() []KeyValue {
	out := []KeyValue{
		kv("Mini stream size", "%d", c.MiniFAT.StreamLen),
		kv("Mini stream sectors", "%s", idList(c.MiniFAT.StreamSectors)),
		kv("Capacity", "%d mini sectors", c.MiniFAT.Capacity()),
	}
	return append(out, tableSummary(c.MiniFAT.AllocTable)...)
}

// TableEntries renders a table's entries, one "index: next" pair per
// element, for diagnostic dumps.
func TableEntries(t *AllocTable) []KeyValue {
	out := make([]KeyValue, len(t.Entries))
	for i, next := range t.Entries {
		out[i] = KeyValue{Key: fmt.Sprintf("%d", i), Value: sectorString(next)}
	}
	return out
}
