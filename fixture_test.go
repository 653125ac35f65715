package mscfb

import (
	"encoding/binary"
	"sort"
	"testing"
	"unicode/utf16"

	"github.com/go-restruct/restruct"
	"github.com/stretchr/testify/require"
)

const testSectorLen = 512

// fixtureEntry is a directory entry with explicit tree links. Streams carry
// their content in data; the builder decides between mini and regular
// sectors by the cutoff.
type fixtureEntry struct {
	name    string
	objType uint8
	left    uint32
	right   uint32
	child   uint32
	data    []byte
}

func rootEntry(child uint32) fixtureEntry {
	return fixtureEntry{name: ROOT_DIR_NAME, objType: OBJ_TYPE_ROOT, left: NO_STREAM, right: NO_STREAM, child: child}
}

func streamEntry(name string, data []byte, left, right uint32) fixtureEntry {
	return fixtureEntry{name: name, objType: OBJ_TYPE_STREAM, left: left, right: right, child: NO_STREAM, data: data}
}

func utf16le(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}

func ceilDiv(n, d int) int {
	return (n + d - 1) / d
}

// buildImage lays out a version 3 file: FAT in sector 0, then the directory,
// the MiniFAT, the mini stream and finally every regular stream.
func buildImage(t *testing.T, entries []fixtureEntry) []byte {
	t.Helper()

	var mini []byte
	var minifat []uint32
	miniStart := make([]uint32, len(entries))
	regular := make([]int, 0)

	for i, e := range entries {
		miniStart[i] = END_OF_CHAIN
		if e.objType != OBJ_TYPE_STREAM || len(e.data) == 0 {
			continue
		}
		if len(e.data) >= int(MINI_STREAM_CUTOFF) {
			regular = append(regular, i)
			continue
		}

		n := ceilDiv(len(e.data), MINI_SECTOR_LEN)
		start := uint32(len(minifat))
		miniStart[i] = start
		for k := 0; k < n; k++ {
			if k == n-1 {
				minifat = append(minifat, END_OF_CHAIN)
			} else {
				minifat = append(minifat, start+uint32(k)+1)
			}
		}
		padded := make([]byte, n*MINI_SECTOR_LEN)
		copy(padded, e.data)
		mini = append(mini, padded...)
	}

	fat := []uint32{FAT_SECTOR}
	chain := func(n int) uint32 {
		if n == 0 {
			return END_OF_CHAIN
		}
		start := uint32(len(fat))
		for k := 0; k < n; k++ {
			if k == n-1 {
				fat = append(fat, END_OF_CHAIN)
			} else {
				fat = append(fat, start+uint32(k)+1)
			}
		}
		return start
	}

	numMiniFat := ceilDiv(len(minifat)*4, testSectorLen)
	dirStart := chain(ceilDiv(len(entries), testSectorLen/DIR_ENTRY_LEN))
	miniFatStart := chain(numMiniFat)
	miniStreamStart := chain(ceilDiv(len(mini), testSectorLen))
	regularStart := make(map[int]uint32)
	for _, i := range regular {
		regularStart[i] = chain(ceilDiv(len(entries[i].data), testSectorLen))
	}
	require.LessOrEqual(t, len(fat), testSectorLen/4, "fixture needs more than one FAT sector")

	body := make([]byte, len(fat)*testSectorLen)
	at := func(sector uint32) []byte {
		return body[int(sector)*testSectorLen:]
	}

	for i := 0; i < testSectorLen/4; i++ {
		v := FREE_SECTOR
		if i < len(fat) {
			v = fat[i]
		}
		binary.LittleEndian.PutUint32(at(0)[i*4:], v)
	}

	for i := 0; i < numMiniFat*testSectorLen/4; i++ {
		v := FREE_SECTOR
		if i < len(minifat) {
			v = minifat[i]
		}
		binary.LittleEndian.PutUint32(at(miniFatStart)[i*4:], v)
	}
	if len(mini) > 0 {
		copy(at(miniStreamStart), mini)
	}
	for i, start := range regularStart {
		copy(at(start), entries[i].data)
	}

	dirSlots := ceilDiv(len(entries), testSectorLen/DIR_ENTRY_LEN) * (testSectorLen / DIR_ENTRY_LEN)
	for i := 0; i < dirSlots; i++ {
		raw := rawDirEntry{
			LeftSibling:    NO_STREAM,
			RightSibling:   NO_STREAM,
			Child:          NO_STREAM,
			StartingSector: END_OF_CHAIN,
		}
		if i < len(entries) {
			e := entries[i]
			name := utf16le(e.name)
			copy(raw.Name[:], name)
			raw.NameLen = uint16(len(name) + 2)
			raw.ObjType = e.objType
			raw.Color = COLOR_BLACK
			raw.LeftSibling, raw.RightSibling, raw.Child = e.left, e.right, e.child

			switch {
			case e.objType == OBJ_TYPE_ROOT:
				raw.StartingSector = miniStreamStart
				raw.StreamSize = uint64(len(mini))
			case e.objType == OBJ_TYPE_STREAM:
				raw.StreamSize = uint64(len(e.data))
				raw.StartingSector = miniStart[i]
				if start, ok := regularStart[i]; ok {
					raw.StartingSector = start
				}
			default:
				raw.StartingSector = 0
			}
		}

		b, err := restruct.Pack(binary.LittleEndian, &raw)
		require.NoError(t, err)
		require.Len(t, b, DIR_ENTRY_LEN)
		copy(at(dirStart)[i*DIR_ENTRY_LEN:], b)
	}

	header := rawHeader{
		MinorVersion:       MINOR_VERSION,
		MajorVersion:       3,
		ByteOrder:          BYTE_ORDER_MARK,
		SectorShift:        9,
		MiniSectorShift:    MINI_SECTOR_SHIFT,
		NumFatSectors:      1,
		FirstDirSector:     dirStart,
		MiniStreamCutoff:   MINI_STREAM_CUTOFF,
		FirstMinifatSector: miniFatStart,
		NumMinifatSectors:  uint32(numMiniFat),
		FirstDifatSector:   END_OF_CHAIN,
	}
	copy(header.Signature[:], MAGIC_NUMBER)
	for i := range header.InitialDifatEntries {
		header.InitialDifatEntries[i] = FREE_SECTOR
	}
	header.InitialDifatEntries[0] = 0

	hb, err := restruct.Pack(binary.LittleEndian, &header)
	require.NoError(t, err)
	require.Len(t, hb, HEADER_LEN)

	return append(hb, body...)
}

// node describes a tree of storages and streams for buildTree.
type node struct {
	name     string
	data     []byte
	storage  bool
	children []*node
}

func stream(name string, data []byte) *node {
	return &node{name: name, data: data}
}

func storage(name string, children ...*node) *node {
	return &node{name: name, storage: true, children: children}
}

// buildTree flattens a tree below the root. Siblings are sorted by the CFB
// name order and chained through their right sibling links.
func buildTree(t *testing.T, children ...*node) []byte {
	t.Helper()

	entries := []fixtureEntry{rootEntry(NO_STREAM)}

	var add func(parent int, children []*node)
	add = func(parent int, children []*node) {
		sorted := append([]*node(nil), children...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return CompareNames(sorted[i].name, sorted[j].name) == OrderLess
		})

		first := len(entries)
		for i, c := range sorted {
			e := streamEntry(c.name, c.data, NO_STREAM, NO_STREAM)
			if c.storage {
				e.objType = OBJ_TYPE_STORAGE
			}
			if i < len(sorted)-1 {
				e.right = uint32(first + i + 1)
			}
			entries = append(entries, e)
		}
		if len(sorted) > 0 {
			entries[parent].child = uint32(first)
		}
		for i, c := range sorted {
			if c.storage {
				add(first+i, c.children)
			}
		}
	}
	add(0, children)

	return buildImage(t, entries)
}

// helloImage is a root with a single subject stream holding "Hello".
func helloImage(t *testing.T) []byte {
	return buildImage(t, []fixtureEntry{
		rootEntry(1),
		streamEntry("__substg1.0_0037001F", utf16le("Hello"), NO_STREAM, NO_STREAM),
	})
}

// Offsets into images produced by buildImage.
func fatEntryOffset(sector uint32) int {
	return HEADER_LEN + int(sector)*4
}

func dirEntryOffset(index int) int {
	return HEADER_LEN + testSectorLen + index*DIR_ENTRY_LEN
}

func propRecord(tag uint32, flags uint32, payload uint64) []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:], tag)
	binary.LittleEndian.PutUint32(b[4:], flags)
	binary.LittleEndian.PutUint64(b[8:], payload)
	return b
}

func propsStream(headerLen int, records ...[]byte) []byte {
	out := make([]byte, headerLen)
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}
