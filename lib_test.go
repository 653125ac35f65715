package mscfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asalih/go-msgcfb/mapi"
)

func TestOpenHelloMessage(t *testing.T) {
	cf := openImage(t, helloImage(t))
	defer cf.Close()

	root := cf.Root()
	assert.Equal(t, ROOT_DIR_NAME, root.Name)
	assert.Equal(t, KindRoot, root.Kind)
	assert.Equal(t, "/", root.Path)

	children, err := cf.Children(ROOT_STREAM_ID)
	require.NoError(t, err)
	require.Len(t, children, 1)

	subject := children[0]
	assert.Equal(t, KindStringStream, subject.Kind)
	assert.Equal(t, uint16(0x0037), subject.PropID)
	assert.Equal(t, uint16(0x001f), subject.PropType)
	assert.Equal(t, "String", mapi.TypeName(subject.PropType))
	assert.Equal(t, "/__substg1.0_0037001F", subject.Path)

	data, err := cf.Content(subject.Index)
	require.NoError(t, err)
	text, err := mapi.DecodeString(data, subject.PropType)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)

	assert.Equal(t, 0, cf.Diagnostics().Len())
}

func TestOpenRejectsNonContainer(t *testing.T) {
	data := bytes.Repeat([]byte{0x42}, 2048)
	_, err := New(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrNotContainerFormat)

	_, err = New(bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, ErrNotContainerFormat)
}

func TestMiniAndRegularReadsAgree(t *testing.T) {
	small := bytes.Repeat([]byte("0123456789abcdef"), 20)
	large := bytes.Repeat([]byte("fedcba9876543210"), 400)

	image := buildTree(t, stream("Small", small), stream("Large", large))
	cf := openImage(t, image)

	smallID, err := cf.Directory.StreamIDForNameChain([]string{"Small"})
	require.NoError(t, err)
	largeID, err := cf.Directory.StreamIDForNameChain([]string{"Large"})
	require.NoError(t, err)

	require.True(t, cf.inMiniStream(cf.Directory.Entries[smallID]))
	require.False(t, cf.inMiniStream(cf.Directory.Entries[largeID]))

	got, err := cf.Content(smallID)
	require.NoError(t, err)
	assert.Equal(t, small, got)

	got, err = cf.Content(largeID)
	require.NoError(t, err)
	assert.Equal(t, large, got)

	// The same bytes, located through the mini sector file offsets.
	entry := cf.Directory.Entries[smallID]
	ids, err := cf.MiniFAT.Collect(entry.StartingSector)
	require.NoError(t, err)
	raw := make([]byte, 0, len(small))
	for _, id := range ids {
		off, err := cf.MiniFAT.FileOffset(id)
		require.NoError(t, err)
		raw = append(raw, image[off:off+int64(MINI_SECTOR_LEN)]...)
	}
	assert.Equal(t, small, raw[:len(small)])

	// Streaming reads agree with whole content reads.
	for _, id := range []uint32{smallID, largeID} {
		s, err := cf.OpenEntry(id)
		require.NoError(t, err)
		streamed, err := io.ReadAll(s)
		require.NoError(t, err)
		content, err := cf.Content(id)
		require.NoError(t, err)
		assert.Equal(t, content, streamed)
	}
}

func TestStreamSeekAndReadAt(t *testing.T) {
	large := make([]byte, 5000)
	for i := range large {
		large[i] = byte(i % 251)
	}
	cf := openImage(t, buildTree(t, stream("Large", large)))

	s, err := cf.OpenStream("/Large")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), s.Len())

	buf := make([]byte, 100)
	n, err := s.ReadAt(buf, 500)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, large[500:600], buf)

	pos, err := s.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(4990), pos)

	rest, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, large[4990:], rest)

	n, err = s.ReadAt(buf, 4950)
	assert.Equal(t, 50, n)
	assert.ErrorIs(t, err, io.EOF)

	_, err = s.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestOpenStreamErrors(t *testing.T) {
	cf := openImage(t, buildTree(t, storage("Dir", stream("Inner", []byte("x")))))

	_, err := cf.OpenStream("/")
	assert.Error(t, err)

	_, err = cf.OpenStream("/Missing")
	assert.Error(t, err)

	_, err = cf.OpenStream("/Dir")
	assert.Error(t, err)

	s, err := cf.OpenStream("/Dir/Inner")
	require.NoError(t, err)
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestFATSelfLoopFailsOpen(t *testing.T) {
	image := helloImage(t)
	// sector 1 holds the directory; make its chain point to itself
	binary.LittleEndian.PutUint32(image[fatEntryOffset(1):], 1)

	_, err := New(bytes.NewReader(image), int64(len(image)))
	assert.ErrorIs(t, err, ErrStructural)

	_, err = New(bytes.NewReader(image), int64(len(image)), WithValidation(ValidationPermissive))
	assert.ErrorIs(t, err, ErrStructural)
}

func TestValidationModes(t *testing.T) {
	image := helloImage(t)
	// header claims two FAT sectors while the DIFAT lists one
	binary.LittleEndian.PutUint32(image[44:], 2)

	_, err := New(bytes.NewReader(image), int64(len(image)))
	assert.ErrorIs(t, err, ErrStructural)

	cf, err := New(bytes.NewReader(image), int64(len(image)), WithValidation(ValidationPermissive))
	require.NoError(t, err)
	assert.Equal(t, ValidationPermissive, cf.Validation())
	assert.Equal(t, 1, cf.Diagnostics().Len())
}

func TestPermissiveRepairsFATMarks(t *testing.T) {
	image := helloImage(t)
	binary.LittleEndian.PutUint32(image[fatEntryOffset(0):], END_OF_CHAIN)

	_, err := New(bytes.NewReader(image), int64(len(image)))
	assert.ErrorIs(t, err, ErrStructural)

	cf, err := New(bytes.NewReader(image), int64(len(image)), WithValidation(ValidationPermissive))
	require.NoError(t, err)
	assert.Equal(t, FAT_SECTOR, cf.FAT.Entries[0])
}

func TestOpenFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/mail/hello.msg", helloImage(t), 0o644))

	cf, err := OpenFs(fs, "/mail/hello.msg")
	require.NoError(t, err)

	s, err := cf.OpenStream("__substg1.0_0037001F")
	require.NoError(t, err)
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, utf16le("Hello"), data)

	assert.NoError(t, cf.Close())
	assert.NoError(t, cf.Close())

	_, err = OpenFs(fs, "/mail/missing.msg")
	assert.ErrorIs(t, err, ErrIO)

	require.NoError(t, afero.WriteFile(fs, "/mail/junk.msg", []byte("not a compound file"), 0o644))
	_, err = OpenFs(fs, "/mail/junk.msg")
	assert.ErrorIs(t, err, ErrNotContainerFormat)
}

func TestOpenMapsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.msg")
	require.NoError(t, os.WriteFile(path, helloImage(t), 0o644))

	cf, err := Open(path)
	require.NoError(t, err)
	defer cf.Close()

	data, err := cf.Content(1)
	require.NoError(t, err)
	assert.Equal(t, utf16le("Hello"), data)

	_, err = Open(filepath.Join(t.TempDir(), "missing.msg"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestEntryHeaderAndDescribe(t *testing.T) {
	image := helloImage(t)
	cf := openImage(t, image)

	raw, err := cf.EntryHeader(1)
	require.NoError(t, err)
	assert.Equal(t, image[dirEntryOffset(1):dirEntryOffset(2)], raw)

	desc, err := cf.Describe(1)
	require.NoError(t, err)
	values := map[string]string{}
	for _, row := range desc {
		values[row.Key] = row.Value
	}
	assert.Equal(t, "__substg1.0_0037001F", values["Name"])
	assert.Equal(t, "StringStream", values["Kind"])
	assert.Equal(t, "0x0037001F", values["Property tag"])
	assert.Equal(t, "String", values["Property type"])
	assert.Equal(t, "PidTagSubject", values["Property name"])
	assert.Equal(t, "10", values["Stream size"])

	_, err = cf.EntryHeader(99)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestSummaries(t *testing.T) {
	cf := openImage(t, helloImage(t))

	lookup := func(rows []KeyValue, key string) string {
		for _, row := range rows {
			if row.Key == key {
				return row.Value
			}
		}
		return ""
	}

	assert.Equal(t, "D0 CF 11 E0 A1 B1 1A E1", lookup(cf.HeaderSummary(), "Signature"))
	assert.Equal(t, "3", lookup(cf.HeaderSummary(), "Major version"))
	assert.Equal(t, "0", lookup(cf.DIFATSummary(), "FAT sectors"))
	assert.Equal(t, "1", lookup(cf.FATSummary(), "FAT"))
	assert.Equal(t, "1", lookup(cf.MiniFATSummary(), "End of chain"))
	assert.Equal(t, "8 mini sectors", lookup(cf.MiniFATSummary(), "Capacity"))

	entries := TableEntries(cf.FAT.AllocTable)
	require.NotEmpty(t, entries)
	assert.Equal(t, KeyValue{Key: "0", Value: "FAT"}, entries[0])
}

func TestWalk(t *testing.T) {
	cf := openImage(t, buildTree(t,
		storage("Dir", stream("Inner", []byte("x"))),
		stream("Top", []byte("y")),
	))

	var paths []string
	var depths []int
	require.NoError(t, cf.Walk(func(e *Entry, depth int) error {
		paths = append(paths, e.Path)
		depths = append(depths, depth)
		return nil
	}))

	assert.Equal(t, []string{"/", "/Dir", "/Dir/Inner", "/Top"}, paths)
	assert.Equal(t, []int{0, 1, 2, 1}, depths)
}

// messageImage builds a message with named properties, a properties stream
// at the top level and one recipient.
func messageImage(t *testing.T) []byte {
	guid := uuid.MustParse("00062008-0000-0000-c000-000000000046")
	var guidStream [16]byte
	g := mapi.GUIDFromBytes(guid)
	copy(guidStream[:], g[:])

	entries := make([]byte, 16)
	// numeric name 0x8503 in the GUID stream's first GUID, property index 0
	binary.LittleEndian.PutUint32(entries[0:], 0x8503)
	binary.LittleEndian.PutUint32(entries[4:], uint32(0)<<16|uint32(3)<<1)
	// string name at offset 0 in PS_PUBLIC_STRINGS, property index 1
	binary.LittleEndian.PutUint32(entries[8:], 0)
	binary.LittleEndian.PutUint32(entries[12:], uint32(1)<<16|uint32(2)<<1|1)

	name := utf16le("Keywords")
	strings := make([]byte, 4, 4+len(name))
	binary.LittleEndian.PutUint32(strings, uint32(len(name)))
	strings = append(strings, name...)

	return buildTree(t,
		storage(NAMEID_STORAGE_NAME,
			stream(mapi.GUIDStreamName, guidStream[:]),
			stream(mapi.EntryStreamName, entries),
			stream(mapi.StringStreamName, strings),
			stream("__substg1.0_10000102", entries[:8]),
		),
		stream(PROPERTIES_STREAM_NAME, propsStream(PROPS_HEADER_TOP_LEVEL,
			propRecord(0x0037001F, 6, 12),
			propRecord(0x0E080003, 2, 1234),
			propRecord(0x8000000B, 2, 1),
			propRecord(0x80010003, 2, 7),
		)),
		stream("__substg1.0_0037001F", utf16le("Hello!")),
		storage("__recip_version1.0_#00000000",
			stream(PROPERTIES_STREAM_NAME, propsStream(PROPS_HEADER_CHILD,
				propRecord(0x3001001F, 6, 6),
			)),
			stream("__substg1.0_3001001F", utf16le("Bob")),
		),
	)
}

func TestNamedProperties(t *testing.T) {
	cf := openImage(t, messageImage(t))

	named, err := cf.NamedProperties()
	require.NoError(t, err)
	require.Len(t, named.GUIDs, 1)
	assert.Equal(t, uuid.MustParse("00062008-0000-0000-c000-000000000046"), named.GUIDs[0])
	require.Len(t, named.Entries, 2)
	assert.Equal(t, "Keywords", named.Strings[0])
	require.Len(t, named.Mappings, 1)
	assert.Equal(t, "__substg1.0_10000102", named.Mappings[0].Stream)

	p, err := cf.ResolveNamed(0x8000)
	require.NoError(t, err)
	assert.Equal(t, named.GUIDs[0], p.GUID)
	assert.False(t, p.IsString)
	assert.Equal(t, uint32(0x8503), p.NumericID)
	assert.Equal(t, "0x8503", p.Name)

	p, err = cf.ResolveNamed(0x8001)
	require.NoError(t, err)
	assert.Equal(t, mapi.PSPublicStrings, p.GUID)
	assert.Equal(t, "Keywords", p.Name)

	_, err = cf.ResolveNamed(0x8002)
	assert.ErrorIs(t, err, mapi.ErrNameNotFound)
}

func TestNamedPropertiesAbsent(t *testing.T) {
	cf := openImage(t, helloImage(t))

	_, err := cf.NamedProperties()
	assert.ErrorIs(t, err, mapi.ErrNameNotFound)
	_, err = cf.ResolveNamed(0x8000)
	assert.ErrorIs(t, err, mapi.ErrNameNotFound)
}

func TestNamedPropertiesMissingStream(t *testing.T) {
	image := buildTree(t,
		storage(NAMEID_STORAGE_NAME,
			stream(mapi.GUIDStreamName, nil),
			stream(mapi.EntryStreamName, nil),
		),
	)
	cf := openImage(t, image)

	_, err := cf.NamedProperties()
	assert.ErrorIs(t, err, ErrStructural)
	assert.NotZero(t, cf.Diagnostics().Len())
}

func TestProperties(t *testing.T) {
	cf := openImage(t, messageImage(t))

	propsID, err := cf.Directory.StreamIDForNameChain([]string{PROPERTIES_STREAM_NAME})
	require.NoError(t, err)

	skip, err := cf.PropertiesHeaderLen(propsID)
	require.NoError(t, err)
	assert.Equal(t, PROPS_HEADER_TOP_LEVEL, skip)

	props, err := cf.Properties(propsID)
	require.NoError(t, err)
	require.Len(t, props, 4)

	subject := props[0]
	assert.Equal(t, uint32(0x0037001F), subject.Tag)
	assert.Equal(t, "PidTagSubject", subject.Name)
	assert.Equal(t, "String", subject.TypeName())
	assert.Equal(t, uint32(12), subject.Size)

	text, err := cf.PropertyString(propsID, subject)
	require.NoError(t, err)
	assert.Equal(t, "Hello!", text)

	assert.Equal(t, "PidTagMessageSize", props[1].Name)
	assert.Equal(t, int64(1234), props[1].Int)

	assert.Equal(t, "0x8503", props[2].Name)
	assert.True(t, props[2].Bool)
	assert.Equal(t, "Keywords", props[3].Name)

	_, err = cf.PropertyValue(propsID, props[1])
	assert.Error(t, err)
}

func TestRecipientProperties(t *testing.T) {
	cf := openImage(t, messageImage(t))

	propsID, err := cf.Directory.StreamIDForNameChain([]string{"__recip_version1.0_#00000000", PROPERTIES_STREAM_NAME})
	require.NoError(t, err)

	skip, err := cf.PropertiesHeaderLen(propsID)
	require.NoError(t, err)
	assert.Equal(t, PROPS_HEADER_CHILD, skip)

	props, err := cf.Properties(propsID)
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "PidTagDisplayName", props[0].Name)

	name, err := cf.PropertyString(propsID, props[0])
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)

	_, err = cf.Properties(ROOT_STREAM_ID)
	assert.Error(t, err)
}

func TestEmbeddedMessageHeaderLen(t *testing.T) {
	cf := openImage(t, buildTree(t,
		storage("__attach_version1.0_#00000000",
			stream(PROPERTIES_STREAM_NAME, make([]byte, PROPS_HEADER_CHILD)),
			storage("__substg1.0_3701000D",
				stream(PROPERTIES_STREAM_NAME, make([]byte, PROPS_HEADER_EMBEDDED)),
			),
		),
	))

	attach, err := cf.Directory.StreamIDForNameChain([]string{"__attach_version1.0_#00000000", PROPERTIES_STREAM_NAME})
	require.NoError(t, err)
	skip, err := cf.PropertiesHeaderLen(attach)
	require.NoError(t, err)
	assert.Equal(t, PROPS_HEADER_CHILD, skip)

	embedded, err := cf.Directory.StreamIDForNameChain([]string{"__attach_version1.0_#00000000", "__substg1.0_3701000D", PROPERTIES_STREAM_NAME})
	require.NoError(t, err)
	skip, err = cf.PropertiesHeaderLen(embedded)
	require.NoError(t, err)
	assert.Equal(t, PROPS_HEADER_EMBEDDED, skip)

	props, err := cf.Properties(embedded)
	require.NoError(t, err)
	assert.Empty(t, props)
}

func TestWithTagNamer(t *testing.T) {
	tags := mapi.TagTable{0x0037: "Subject"}
	cf := openImage(t, messageImage(t), WithTagNamer(tags))

	propsID, err := cf.Directory.StreamIDForNameChain([]string{PROPERTIES_STREAM_NAME})
	require.NoError(t, err)
	props, err := cf.Properties(propsID)
	require.NoError(t, err)

	assert.Equal(t, "Subject", props[0].Name)
	assert.Equal(t, mapi.NotFound, props[1].Name)
}

// chainedDIFATImage moves the FAT sector list of helloImage out of the header
// into a DIFAT sector appended as sector 4. mark is the FAT entry written for
// that sector and next its chain pointer.
func chainedDIFATImage(t *testing.T, mark, next uint32) []byte {
	t.Helper()
	const difatSector = 4

	image := helloImage(t)
	binary.LittleEndian.PutUint32(image[DIFAT_OFFSET_IN_HEADER:], FREE_SECTOR)
	binary.LittleEndian.PutUint32(image[68:], difatSector)
	binary.LittleEndian.PutUint32(image[72:], 1)
	binary.LittleEndian.PutUint32(image[fatEntryOffset(difatSector):], mark)

	sector := make([]byte, testSectorLen)
	for i := 0; i < testSectorLen/4; i++ {
		binary.LittleEndian.PutUint32(sector[i*4:], FREE_SECTOR)
	}
	// a FREE entry ahead of the real one is skipped
	binary.LittleEndian.PutUint32(sector[4:], 0)
	binary.LittleEndian.PutUint32(sector[testSectorLen-4:], next)

	require.Len(t, image, HEADER_LEN+difatSector*testSectorLen)
	return append(image, sector...)
}

func TestChainedDIFAT(t *testing.T) {
	cf := openImage(t, chainedDIFATImage(t, DIFAT_SECTOR, END_OF_CHAIN))

	assert.Equal(t, []uint32{0}, cf.DIFAT.FatSectors)
	assert.Equal(t, []uint32{4}, cf.DIFAT.DifatSectors)
	assert.Equal(t, 0, cf.Diagnostics().Len())

	data, err := cf.Content(1)
	require.NoError(t, err)
	assert.Equal(t, utf16le("Hello"), data)

	// some writers end the DIFAT chain with FREE_SECTOR
	cf = openImage(t, chainedDIFATImage(t, DIFAT_SECTOR, FREE_SECTOR))
	assert.Equal(t, []uint32{4}, cf.DIFAT.DifatSectors)
}

func TestChainedDIFATUnmarked(t *testing.T) {
	image := chainedDIFATImage(t, END_OF_CHAIN, END_OF_CHAIN)

	_, err := New(bytes.NewReader(image), int64(len(image)))
	assert.ErrorIs(t, err, ErrStructural)

	cf, err := New(bytes.NewReader(image), int64(len(image)), WithValidation(ValidationPermissive))
	require.NoError(t, err)
	assert.Equal(t, DIFAT_SECTOR, cf.FAT.Entries[4])
	assert.Equal(t, 1, cf.Diagnostics().Len())

	data, err := cf.Content(1)
	require.NoError(t, err)
	assert.Equal(t, utf16le("Hello"), data)
}

func TestChainedDIFATErrors(t *testing.T) {
	t.Run("cycle", func(t *testing.T) {
		image := chainedDIFATImage(t, DIFAT_SECTOR, 4)
		for _, v := range []Validation{ValidationStrict, ValidationPermissive} {
			_, err := New(bytes.NewReader(image), int64(len(image)), WithValidation(v))
			assert.ErrorIs(t, err, ErrStructural, v.String())
		}
	})

	t.Run("count mismatch", func(t *testing.T) {
		image := chainedDIFATImage(t, DIFAT_SECTOR, END_OF_CHAIN)
		binary.LittleEndian.PutUint32(image[72:], 2)

		_, err := New(bytes.NewReader(image), int64(len(image)))
		assert.ErrorIs(t, err, ErrStructural)

		cf, err := New(bytes.NewReader(image), int64(len(image)), WithValidation(ValidationPermissive))
		require.NoError(t, err)
		assert.Equal(t, 1, cf.Diagnostics().Len())
	})
}

func TestOversizedStreamIsScopedToEntry(t *testing.T) {
	image := helloImage(t)
	binary.LittleEndian.PutUint64(image[dirEntryOffset(1)+120:], 0xFFFFFFF0)
	cf := openImage(t, image)

	_, err := cf.Content(1)
	assert.ErrorIs(t, err, ErrStructural)
	var entryErr *EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, uint32(1), entryErr.Entry)

	_, err = cf.OpenEntry(1)
	assert.ErrorIs(t, err, ErrStructural)

	_, err = cf.FAT.Read(1, math.MaxUint64)
	assert.ErrorIs(t, err, ErrStructural)
	_, err = cf.MiniFAT.Read(0, math.MaxUint64)
	assert.ErrorIs(t, err, ErrStructural)

	root, err := cf.Content(ROOT_STREAM_ID)
	require.NoError(t, err)
	assert.Len(t, root, MINI_SECTOR_LEN)
}

func TestStreamSizeBeyondChain(t *testing.T) {
	image := helloImage(t)
	// one mini sector holds the content, the entry claims 100 bytes
	binary.LittleEndian.PutUint64(image[dirEntryOffset(1)+120:], 100)
	cf := openImage(t, image)

	_, err := cf.Content(1)
	assert.ErrorIs(t, err, ErrStructural)

	_, err = cf.OpenEntry(1)
	assert.ErrorIs(t, err, ErrStructural)
}

func TestNamedPropertiesSkipUnreadableStream(t *testing.T) {
	image := messageImage(t)
	cf := openImage(t, image)
	mapping, err := cf.Directory.StreamIDForNameChain([]string{NAMEID_STORAGE_NAME, "__substg1.0_10000102"})
	require.NoError(t, err)

	binary.LittleEndian.PutUint64(image[dirEntryOffset(int(mapping))+120:], 0xFFFFFFF0)
	cf = openImage(t, image)

	named, err := cf.NamedProperties()
	require.NoError(t, err)
	assert.Empty(t, named.Mappings)

	p, err := cf.ResolveNamed(0x8001)
	require.NoError(t, err)
	assert.Equal(t, "Keywords", p.Name)

	found := false
	for _, w := range cf.Diagnostics().Warnings() {
		var entryErr *EntryError
		if errors.As(w, &entryErr) && entryErr.Entry == mapping {
			found = true
		}
	}
	assert.True(t, found)
}
