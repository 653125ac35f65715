package mscfb

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-restruct/restruct"
	"github.com/google/uuid"

	"github.com/asalih/go-msgcfb/mapi"
)

// rawHeader is the on-disk layout of the 512 byte header block.
type rawHeader struct {
	Signature            [8]byte
	CLSID                [16]byte
	MinorVersion         uint16
	MajorVersion         uint16
	ByteOrder            uint16
	SectorShift          uint16
	MiniSectorShift      uint16
	Reserved             [6]byte
	NumDirSectors        uint32
	NumFatSectors        uint32
	FirstDirSector       uint32
	TransactionSignature uint32
	MiniStreamCutoff     uint32
	FirstMinifatSector   uint32
	NumMinifatSectors    uint32
	FirstDifatSector     uint32
	NumDifatSectors      uint32

	InitialDifatEntries [NUM_DIFAT_ENTRIES_IN_HEADER]uint32
}

// Header is the fixed block at file offset 0.
type Header struct {
	rawHeader

	Version Version
}

// ParseHeader decodes the header block. The signature is checked before any
// other field is looked at.
func ParseHeader(buf []byte) (*Header, error) {
	if len(buf) < len(MAGIC_NUMBER) || !bytes.Equal(buf[:len(MAGIC_NUMBER)], MAGIC_NUMBER) {
		return nil, ErrNotContainerFormat
	}
	if len(buf) < HEADER_LEN {
		return nil, fmt.Errorf("header is %v bytes, expected %v: %w", len(buf), HEADER_LEN, ErrNotContainerFormat)
	}

	h := &Header{}
	if err := restruct.Unpack(buf[:HEADER_LEN], binary.LittleEndian, &h.rawHeader); err != nil {
		return nil, fmt.Errorf("decode header: %v: %w", err, ErrNotContainerFormat)
	}

	if h.ByteOrder != BYTE_ORDER_MARK {
		return nil, fmt.Errorf("invalid CFB byte order mark (expected 0x%04X, found 0x%04X): %w",
			BYTE_ORDER_MARK, h.ByteOrder, ErrNotContainerFormat)
	}

	version, err := VersionNumber(h.MajorVersion)
	if err != nil {
		return nil, err
	}
	h.Version = version

	// Some CFB implementations use FREE_SECTOR to indicate END_OF_CHAIN.
	if h.FirstDifatSector == FREE_SECTOR {
		h.FirstDifatSector = END_OF_CHAIN
	}
	if h.FirstMinifatSector == FREE_SECTOR {
		h.FirstMinifatSector = END_OF_CHAIN
	}

	return h, nil
}

// Validate checks the fields that have a single legal value. Violations are
// fatal in strict mode and recorded otherwise, except for a sector shift
// outside the range this reader can address.
func (h *Header) Validate(v Validation, diag *Diagnostics) error {
	if h.SectorShift < 7 || h.SectorShift > 16 {
		return fmt.Errorf("unsupported sector shift %v: %w", h.SectorShift, ErrNotContainerFormat)
	}
	if h.MiniSectorShift != MINI_SECTOR_SHIFT {
		return fmt.Errorf("incorrect mini sector shift (expected %v, found %v): %w",
			MINI_SECTOR_SHIFT, h.MiniSectorShift, ErrNotContainerFormat)
	}

	if h.SectorShift != h.Version.SectorShift() {
		err := fmt.Errorf("incorrect sector shift for CFB version %v (expected %v, found %v): %w",
			h.Version, h.Version.SectorShift(), h.SectorShift, ErrStructural)
		if err := diag.check(v, err); err != nil {
			return err
		}
	}

	if h.MiniStreamCutoff != MINI_STREAM_CUTOFF {
		err := fmt.Errorf("incorrect mini stream cutoff (expected %v, found %v): %w",
			MINI_STREAM_CUTOFF, h.MiniStreamCutoff, ErrStructural)
		if err := diag.check(v, err); err != nil {
			return err
		}
	}

	if h.Version == V3 && h.NumDirSectors != 0 {
		err := fmt.Errorf("version 3 file declares %v directory sectors: %w", h.NumDirSectors, ErrStructural)
		if err := diag.check(v, err); err != nil {
			return err
		}
	}

	return nil
}

// SectorLen returns the sector size in bytes.
func (h *Header) SectorLen() int {
	return SectorLen(h.SectorShift)
}

// MiniSectorLen returns the mini sector size in bytes.
func (h *Header) MiniSectorLen() int {
	return SectorLen(h.MiniSectorShift)
}

// Cutoff returns the stream size below which content lives in the mini stream.
func (h *Header) Cutoff() uint64 {
	if h.MiniStreamCutoff == 0 {
		return uint64(MINI_STREAM_CUTOFF)
	}
	return uint64(h.MiniStreamCutoff)
}

func (h *Header) ClassID() uuid.UUID {
	return mapi.GUIDFromBytes(h.CLSID)
}
