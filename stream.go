package mscfb

import (
	"errors"
	"fmt"
	"io"
)

// Stream reads the content of one stream entry. It implements io.Reader,
// io.ReaderAt and io.Seeker, so large streams can be read in bounded chunks.
type Stream struct {
	StreamId uint32
	TotalLen uint64

	sectors  []uint32
	readAtIn func(ids []uint32, p []byte, off int64) (int, error)
	position int64
}

func newStream(comp *CompoundFile, entry *DirEntry) (*Stream, error) {
	s := &Stream{
		StreamId: entry.Index,
		TotalLen: entry.StreamSize,
	}
	if entry.StreamSize == 0 {
		s.readAtIn = comp.FAT.ReadAtIn
		return s, nil
	}

	var err error
	unitLen := uint64(comp.FAT.SectorLen())
	if comp.inMiniStream(entry) {
		s.sectors, err = comp.MiniFAT.Collect(entry.StartingSector)
		s.readAtIn = comp.MiniFAT.ReadAtIn
		unitLen = uint64(MINI_SECTOR_LEN)
	} else {
		s.sectors, err = comp.FAT.Collect(entry.StartingSector)
		s.readAtIn = comp.FAT.ReadAtIn
	}
	if err != nil {
		return nil, &EntryError{Entry: entry.Index, Err: err}
	}
	if limit := uint64(len(s.sectors)) * unitLen; s.TotalLen > limit {
		return nil, &EntryError{Entry: entry.Index, Err: fmt.Errorf("stream size %v exceeds its %v byte chain: %w", s.TotalLen, limit, ErrStructural)}
	}

	return s, nil
}

// Len returns the declared size of the stream.
func (s *Stream) Len() int64 {
	return int64(s.TotalLen)
}

func (s *Stream) CurrentPosition() uint64 {
	return uint64(s.position)
}

func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.ReadAt(p, s.position)
	s.position += int64(n)
	if errors.Is(err, io.EOF) && n > 0 {
		err = nil
	}
	return n, err
}

// ReadAt reads len(p) bytes at off. A stream whose chain ends before its
// declared size fails with ErrStructural.
func (s *Stream) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset %v", off)
	}
	if off >= s.Len() {
		return 0, io.EOF
	}

	want := p
	if rest := s.Len() - off; int64(len(want)) > rest {
		want = want[:rest]
	}

	n, err := s.readAtIn(s.sectors, want, off)
	if err != nil {
		return n, &EntryError{Entry: s.StreamId, Err: err}
	}
	if n < len(want) {
		return n, &EntryError{Entry: s.StreamId, Err: fmt.Errorf("chain ends %v bytes before the declared size: %w", len(want)-n, ErrStructural)}
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.position + offset
	case io.SeekEnd:
		pos = s.Len() + offset
	default:
		return 0, fmt.Errorf("invalid whence %v", whence)
	}

	if pos < 0 {
		return 0, fmt.Errorf("seek to negative position %v", pos)
	}
	s.position = pos

	return pos, nil
}
