package pak

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"os"
	"sort"
)

// Writer builds a VPAK archive. Entries are buffered in memory and the
// archive is laid out when Close is called.
type Writer struct {
	file    *os.File
	entries []*Entry
	blobs   [][]byte
	names   map[string]bool
	closed  bool
}

// NewWriter creates a VPAK archive at the given path, truncating any
// existing file.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	return &Writer{
		file:  file,
		names: make(map[string]bool),
	}, nil
}

// Add adds a file to the archive. Content is compressed unless compression
// would not shrink it.
func (w *Writer) Add(name string, content []byte) error {
	if w.closed {
		return fmt.Errorf("archive already closed")
	}
	name = normalizePath(name)
	if w.names[name] {
		return fmt.Errorf("duplicate entry: %s", name)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(content); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}

	entry := &Entry{
		Name:             name,
		UncompressedSize: uint32(len(content)),
	}
	blob := buf.Bytes()
	if len(blob) < len(content) {
		entry.Flags = flagCompressed
	} else {
		blob = content
	}
	entry.CompressedSize = uint32(len(blob))

	w.names[name] = true
	w.entries = append(w.entries, entry)
	w.blobs = append(w.blobs, blob)
	return nil
}

// Close writes the archive layout and closes the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	// Deterministic entry order keeps archives reproducible.
	order := make([]int, len(w.entries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return w.entries[order[a]].Name < w.entries[order[b]].Name
	})

	offset := uint64(headerSize)
	var body bytes.Buffer
	var table bytes.Buffer
	for _, i := range order {
		entry, blob := w.entries[i], w.blobs[i]
		entry.Offset = offset
		body.Write(blob)
		offset += uint64(len(blob))

		var nameLen [2]byte
		binary.LittleEndian.PutUint16(nameLen[:], uint16(len(entry.Name)))
		table.Write(nameLen[:])
		table.WriteString(entry.Name)

		var fixed [17]byte
		binary.LittleEndian.PutUint32(fixed[0:], entry.CompressedSize)
		binary.LittleEndian.PutUint32(fixed[4:], entry.UncompressedSize)
		binary.LittleEndian.PutUint64(fixed[8:], entry.Offset)
		fixed[16] = entry.Flags
		table.Write(fixed[:])
	}

	var compressedTable bytes.Buffer
	zw := zlib.NewWriter(&compressedTable)
	if _, err := zw.Write(table.Bytes()); err != nil {
		w.file.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		w.file.Close()
		return err
	}

	header := make([]byte, headerSize)
	copy(header[:4], magic)
	binary.LittleEndian.PutUint32(header[4:], version)
	binary.LittleEndian.PutUint64(header[8:], offset)
	binary.LittleEndian.PutUint32(header[16:], uint32(len(w.entries)))

	if _, err := w.file.Write(header); err != nil {
		w.file.Close()
		return err
	}
	if _, err := w.file.Write(body.Bytes()); err != nil {
		w.file.Close()
		return err
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint32(compressedTable.Len())); err != nil {
		w.file.Close()
		return err
	}
	if err := binary.Write(w.file, binary.LittleEndian, uint32(table.Len())); err != nil {
		w.file.Close()
		return err
	}
	if _, err := w.file.Write(compressedTable.Bytes()); err != nil {
		w.file.Close()
		return err
	}

	return w.file.Close()
}
