package mscfb

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"
	"golang.org/x/exp/mmap"

	"github.com/asalih/go-msgcfb/mapi"
)

// CompoundFile is an opened container. All tables are built by Open and
// never change afterwards, so reads may interleave freely.
type CompoundFile struct {
	Header    *Header
	DIFAT     *DIFAT
	FAT       *FAT
	MiniFAT   *MiniFAT
	Directory *Directory

	sectors *Sectors
	closer  io.Closer
	opts    options
	diag    *Diagnostics

	named    *mapi.NamedProperties
	namedErr error
}

type options struct {
	validation Validation
	logger     *slog.Logger
	tags       mapi.TagNamer
}

// Option configures how a container is decoded.
type Option func(*options)

// WithValidation selects strict or permissive handling of inconsistent
// allocation tables. Strict is the default.
func WithValidation(v Validation) Option {
	return func(o *options) {
		o.validation = v
	}
}

// WithLogger routes decoding warnings to logger. By default they are only
// collected in Diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTagNamer replaces the table used to name property ids.
func WithTagNamer(tags mapi.TagNamer) Option {
	return func(o *options) {
		if tags != nil {
			o.tags = tags
		}
	}
}

func defaultOptions() options {
	return options{
		validation: ValidationStrict,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tags:       mapi.WellKnownTags,
	}
}

// Open memory maps the file at path and decodes it.
func Open(path string, opts ...Option) (*CompoundFile, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, ErrIO)
	}

	c, err := New(r, int64(r.Len()), opts...)
	if err != nil {
		r.Close()
		return nil, err
	}
	c.closer = r

	return c, nil
}

// OpenFs decodes the file at path of fs.
func OpenFs(fs afero.Fs, path string, opts ...Option) (*CompoundFile, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, ErrIO)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %v: %w", path, err, ErrIO)
	}

	c, err := New(f, info.Size(), opts...)
	if err != nil {
		f.Close()
		return nil, err
	}
	c.closer = f

	return c, nil
}

// New decodes a container of size bytes read through r. The caller keeps
// ownership of r.
func New(r io.ReaderAt, size int64, opts ...Option) (*CompoundFile, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	diag := newDiagnostics(o.logger)

	buf := make([]byte, min(uint64(HEADER_LEN), uint64(size)))
	if _, err := r.ReadAt(buf, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %v: %w", err, ErrIO)
	}

	header, err := ParseHeader(buf)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(o.validation, diag); err != nil {
		return nil, err
	}

	sectorLen := header.SectorLen()
	if size > (int64(MAX_REGULAR_SECTOR)+1)*int64(sectorLen) {
		return nil, fmt.Errorf("file is too large: %w", ErrStructural)
	}
	if size < int64(sectorLen) {
		return nil, fmt.Errorf("file is too small: %w", ErrStructural)
	}

	sectors := NewSectors(sectorLen, size, r)

	difat, err := ResolveDIFAT(sectors, header, o.validation, diag)
	if err != nil {
		return nil, err
	}

	fat, err := BuildFAT(sectors, difat)
	if err != nil {
		return nil, err
	}
	fat.trim(o.validation)

	if err := difat.CheckMarks(fat.AllocTable, o.validation, diag); err != nil {
		return nil, err
	}
	if err := fat.validate(); err != nil {
		if err := diag.check(o.validation, err); err != nil {
			return nil, err
		}
	}

	directory, err := ParseDirectory(fat, header, o.validation, diag)
	if err != nil {
		return nil, err
	}

	miniFAT, err := BuildMiniFAT(fat, header, directory.RootDirEntry(), o.validation, diag)
	if err != nil {
		return nil, err
	}

	c := &CompoundFile{
		Header:    header,
		DIFAT:     difat,
		FAT:       fat,
		MiniFAT:   miniFAT,
		Directory: directory,

		sectors: sectors,
		opts:    o,
		diag:    diag,
	}

	c.named, c.namedErr = c.loadNamedProperties()
	if c.namedErr != nil {
		diag.warn(c.namedErr)
	}

	o.logger.Debug("opened compound file",
		"version", header.Version,
		"sectorLen", sectorLen,
		"sectors", sectors.NumSectors,
		"entries", len(directory.Entries),
		"warnings", diag.Len())

	return c, nil
}

// Close releases the file opened by Open or OpenFs. It is a no-op for
// containers created with New.
func (c *CompoundFile) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

// Diagnostics returns the problems tolerated while decoding.
func (c *CompoundFile) Diagnostics() *Diagnostics {
	return c.diag
}

// Validation returns the mode the container was decoded with.
func (c *CompoundFile) Validation() Validation {
	return c.opts.validation
}

func (c *CompoundFile) dirEntry(index uint32) (*DirEntry, error) {
	entry, err := c.Directory.Entry(index)
	if err != nil {
		return nil, err
	}
	if entry.Err != nil {
		return nil, entry.Err
	}
	return entry, nil
}

// Root returns the root storage.
func (c *CompoundFile) Root() *Entry {
	return NewEntry(c.Directory.RootDirEntry(), "/")
}

// Entry returns the summary of the entry at index.
func (c *CompoundFile) Entry(index uint32) (*Entry, error) {
	entry, err := c.dirEntry(index)
	if err != nil {
		return nil, err
	}
	return NewEntry(entry, c.pathOf(index)), nil
}

// Children returns the children of a storage in sibling tree order.
func (c *CompoundFile) Children(index uint32) ([]*Entry, error) {
	ids, err := c.Directory.Children(index)
	if err != nil {
		return nil, err
	}

	parentPath := c.pathOf(index)
	children := make([]*Entry, 0, len(ids))
	for _, id := range ids {
		child := NewEntry(c.Directory.Entries[id], joinPath(parentPath, c.Directory.Entries[id].Name))
		children = append(children, child)
	}
	return children, nil
}

// Parent returns the storage holding index. It reports false for the root
// and for entries not reachable from it.
func (c *CompoundFile) Parent(index uint32) (*Entry, bool) {
	parent := c.Directory.Parent(index)
	if parent == NO_STREAM {
		return nil, false
	}
	return NewEntry(c.Directory.Entries[parent], c.pathOf(parent)), true
}

// Walk visits every entry reachable from the root, depth first, parents
// before children. Storages whose sibling tree is broken are skipped.
func (c *CompoundFile) Walk(fn func(entry *Entry, depth int) error) error {
	type frame struct {
		index uint32
		depth int
	}

	stack := []frame{{index: ROOT_STREAM_ID}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entry, err := c.Entry(f.index)
		if err != nil {
			continue
		}
		if err := fn(entry, f.depth); err != nil {
			return err
		}

		if !c.Directory.Entries[f.index].IsStorage() {
			continue
		}
		children, err := c.Directory.Children(f.index)
		if err != nil {
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{index: children[i], depth: f.depth + 1})
		}
	}
	return nil
}

func (c *CompoundFile) pathOf(index uint32) string {
	names := make([]string, 0)
	for current := index; current != ROOT_STREAM_ID; {
		parent := c.Directory.Parent(current)
		if parent == NO_STREAM || len(names) > len(c.Directory.Entries) {
			return ""
		}
		names = append(names, c.Directory.Entries[current].Name)
		current = parent
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return PathFromNameChain(names)
}

func joinPath(parent, name string) string {
	if parent == "" {
		return ""
	}
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

// EntryHeader returns a copy of the raw 128 byte directory record.
func (c *CompoundFile) EntryHeader(index uint32) ([]byte, error) {
	entry, err := c.Directory.Entry(index)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), entry.Raw...), nil
}

// Content reads the full content of a stream. Streams below the mini
// stream cutoff live in the mini stream; the root entry's content is the
// mini stream itself.
func (c *CompoundFile) Content(index uint32) ([]byte, error) {
	entry, err := c.dirEntry(index)
	if err != nil {
		return nil, err
	}
	if !entry.IsStream() && entry.ObjType != Root {
		return nil, &EntryError{Entry: index, Err: fmt.Errorf("%v is a %v, not a stream", entry.Name, entry.ObjType)}
	}
	if entry.StreamSize == 0 {
		return []byte{}, nil
	}

	var data []byte
	if c.inMiniStream(entry) {
		data, err = c.MiniFAT.Read(entry.StartingSector, entry.StreamSize)
	} else {
		data, err = c.FAT.Read(entry.StartingSector, entry.StreamSize)
	}
	if err != nil {
		return nil, &EntryError{Entry: index, Err: err}
	}
	return data, nil
}

func (c *CompoundFile) inMiniStream(entry *DirEntry) bool {
	return entry.ObjType != Root && entry.StreamSize < c.Header.Cutoff()
}

// OpenStream opens the stream at a slash separated path below the root.
func (c *CompoundFile) OpenStream(path string) (*Stream, error) {
	names := NameChainFromPath(path)
	path = PathFromNameChain(names)

	streamId, err := c.Directory.StreamIDForNameChain(names)
	if err != nil {
		return nil, err
	}
	if streamId == ROOT_STREAM_ID {
		return nil, fmt.Errorf("not a stream: %s", path)
	}

	return c.OpenEntry(streamId)
}

// OpenEntry opens the stream at index for incremental reading.
func (c *CompoundFile) OpenEntry(index uint32) (*Stream, error) {
	entry, err := c.dirEntry(index)
	if err != nil {
		return nil, err
	}
	if !entry.IsStream() {
		return nil, &EntryError{Entry: index, Err: fmt.Errorf("%v is a %v, not a stream", entry.Name, entry.ObjType)}
	}

	return newStream(c, entry)
}
