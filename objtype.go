package mscfb

import "fmt"

type ObjectType int

const (
	Unallocated ObjectType = iota
	Storage
	StreamObject
	Root
)

func (o ObjectType) AsByte() byte {
	switch o {
	case Unallocated:
		return OBJ_TYPE_UNALLOCATED
	case Storage:
		return OBJ_TYPE_STORAGE
	case StreamObject:
		return OBJ_TYPE_STREAM
	case Root:
		return OBJ_TYPE_ROOT
	default:
		return 0
	}
}

func (o ObjectType) String() string {
	switch o {
	case Unallocated:
		return "unknown"
	case Storage:
		return "storage"
	case StreamObject:
		return "stream"
	case Root:
		return "root storage"
	default:
		return fmt.Sprintf("ObjectType(%d)", int(o))
	}
}

// ObjectFromByte decodes the object type byte of a directory entry. Values
// other than 0, 1, 2 and 5 are rejected rather than coerced.
func ObjectFromByte(b byte) (ObjectType, error) {
	switch b {
	case OBJ_TYPE_UNALLOCATED:
		return Unallocated, nil
	case OBJ_TYPE_STORAGE:
		return Storage, nil
	case OBJ_TYPE_STREAM:
		return StreamObject, nil
	case OBJ_TYPE_ROOT:
		return Root, nil
	default:
		return Unallocated, fmt.Errorf("object type byte 0x%02X: %w", b, ErrUnknownStorageType)
	}
}
