package mscfb

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-restruct/restruct"
	"github.com/google/uuid"

	"github.com/asalih/go-msgcfb/mapi"
)

// rawDirEntry is the on-disk layout of a 128 byte directory entry.
type rawDirEntry struct {
	Name           [64]byte
	NameLen        uint16
	ObjType        uint8
	Color          uint8
	LeftSibling    uint32
	RightSibling   uint32
	Child          uint32
	CLSID          [16]byte
	StateBits      uint32
	CreationTime   uint64
	ModifiedTime   uint64
	StartingSector uint32
	StreamSize     uint64
}

type DirEntry struct {
	Index          uint32
	Name           string
	ObjType        ObjectType
	Color          Color
	LeftSibling    uint32
	RightSibling   uint32
	Child          uint32
	CLSID          uuid.UUID
	StateBits      uint32
	CreationTime   time.Time
	ModifiedTime   time.Time
	StartingSector uint32
	StreamSize     uint64

	Classification

	// Raw is the undecoded 128 byte record.
	Raw []byte
	// Err is set when the entry could not be decoded; its subtree is skipped.
	Err error
}

// ReadDirEntry decodes the record at buf[:DIR_ENTRY_LEN]. An unknown object
// type yields an entry of KindInvalid together with an EntryError.
func ReadDirEntry(buf []byte, index uint32, version Version) (*DirEntry, error) {
	if len(buf) < DIR_ENTRY_LEN {
		return nil, &EntryError{Entry: index, Err: fmt.Errorf("record is %v bytes: %w", len(buf), ErrStructural)}
	}

	raw := rawDirEntry{}
	if err := restruct.Unpack(buf[:DIR_ENTRY_LEN], binary.LittleEndian, &raw); err != nil {
		return nil, &EntryError{Entry: index, Err: fmt.Errorf("decode: %v: %w", err, ErrStructural)}
	}

	dir := &DirEntry{
		Index:          index,
		Color:          ColorFromByte(raw.Color),
		LeftSibling:    raw.LeftSibling,
		RightSibling:   raw.RightSibling,
		Child:          raw.Child,
		CLSID:          mapi.GUIDFromBytes(raw.CLSID),
		StateBits:      raw.StateBits,
		CreationTime:   mapi.FileTime(raw.CreationTime),
		ModifiedTime:   mapi.FileTime(raw.ModifiedTime),
		StartingSector: raw.StartingSector,
		StreamSize:     raw.StreamSize & version.StreamLenMask(),
		Raw:            append([]byte(nil), buf[:DIR_ENTRY_LEN]...),
	}

	name, err := decodeEntryName(raw.Name, raw.NameLen)
	if err != nil {
		dir.Kind = KindInvalid
		dir.Err = &EntryError{Entry: index, Err: err}
		return dir, dir.Err
	}
	dir.Name = name

	objType, err := ObjectFromByte(raw.ObjType)
	if err != nil {
		dir.Kind = KindInvalid
		dir.Err = &EntryError{Entry: index, Err: err}
		return dir, dir.Err
	}
	dir.ObjType = objType

	dir.Classification = Classify(name)
	if objType == Unallocated && dir.Kind != KindUnallocated {
		dir.Kind = KindUnallocated
	}

	return dir, nil
}

func decodeEntryName(raw [64]byte, nameLen uint16) (string, error) {
	if nameLen == 0 {
		return "", nil
	}
	if nameLen > 64 || nameLen%2 != 0 {
		return "", fmt.Errorf("name length %v: %w", nameLen, ErrStructural)
	}
	// nameLen counts the terminating NUL
	n := int(nameLen) - 2
	if n < 0 {
		n = 0
	}
	return mapi.DecodeUTF16(raw[:n])
}

// IsStream reports whether the entry carries content.
func (d *DirEntry) IsStream() bool {
	return d.ObjType == StreamObject
}

// IsStorage reports whether the entry can have children.
func (d *DirEntry) IsStorage() bool {
	return d.ObjType == Storage || d.ObjType == Root
}
