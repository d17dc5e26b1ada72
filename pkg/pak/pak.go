// Package pak provides reading and writing of Voidreach VPAK asset archives.
//
// A VPAK archive is a flat list of zlib-compressed entries followed by a
// compressed file table:
//
//	header:  magic "VPAK" | version uint32 | tableOffset uint64 | fileCount uint32
//	entries: raw (possibly compressed) blobs, back to back
//	table:   compressedSize uint32 | uncompressedSize uint32 | zlib(table)
//
// Each table record is: nameLen uint16 | name | compressedSize uint32 |
// uncompressedSize uint32 | offset uint64 | flags uint8. All integers are
// little-endian. Paths use '/' separators and are matched case-insensitively.
package pak

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	magic      = "VPAK"
	version    = 1
	headerSize = 4 + 4 + 8 + 4
)

// Entry flags.
const (
	flagCompressed uint8 = 1 << 0
)

// Archive errors.
var (
	ErrBadMagic           = errors.New("invalid VPAK magic")
	ErrUnsupportedVersion = errors.New("unsupported VPAK version")
	ErrTruncated          = errors.New("truncated VPAK data")
)

// Entry represents a file entry in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint32
	UncompressedSize uint32
	Offset           uint64
	Flags            uint8
}

// Archive represents an opened VPAK archive.
type Archive struct {
	file    *os.File
	version uint32
	entries map[string]*Entry
}

// Open opens a VPAK archive for reading.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	a := &Archive{
		file:    file,
		entries: make(map[string]*Entry),
	}

	if err := a.readTable(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading archive table: %w", err)
	}

	return a, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

// Version returns the archive format version.
func (a *Archive) Version() uint32 {
	return a.version
}

func (a *Archive) readTable() error {
	header := make([]byte, headerSize)
	if _, err := a.file.ReadAt(header, 0); err != nil {
		return ErrTruncated
	}

	if string(header[:4]) != magic {
		return ErrBadMagic
	}
	a.version = binary.LittleEndian.Uint32(header[4:8])
	if a.version != version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.version)
	}
	tableOffset := binary.LittleEndian.Uint64(header[8:16])
	fileCount := binary.LittleEndian.Uint32(header[16:20])

	if _, err := a.file.Seek(int64(tableOffset), io.SeekStart); err != nil {
		return err
	}

	var compressedSize, uncompressedSize uint32
	if err := binary.Read(a.file, binary.LittleEndian, &compressedSize); err != nil {
		return ErrTruncated
	}
	if err := binary.Read(a.file, binary.LittleEndian, &uncompressedSize); err != nil {
		return ErrTruncated
	}

	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(a.file, compressed); err != nil {
		return ErrTruncated
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return err
	}
	defer zr.Close()

	table := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(zr, table); err != nil {
		return ErrTruncated
	}

	offset := 0
	for i := uint32(0); i < fileCount; i++ {
		if offset+2 > len(table) {
			return ErrTruncated
		}
		nameLen := int(binary.LittleEndian.Uint16(table[offset:]))
		offset += 2
		if offset+nameLen+17 > len(table) {
			return ErrTruncated
		}
		entry := &Entry{
			Name:             normalizePath(string(table[offset : offset+nameLen])),
			CompressedSize:   binary.LittleEndian.Uint32(table[offset+nameLen:]),
			UncompressedSize: binary.LittleEndian.Uint32(table[offset+nameLen+4:]),
			Offset:           binary.LittleEndian.Uint64(table[offset+nameLen+8:]),
			Flags:            table[offset+nameLen+16],
		}
		offset += nameLen + 17
		a.entries[entry.Name] = entry
	}

	return nil
}

// List returns all file paths in the archive.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for path := range a.entries {
		result = append(result, path)
	}
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.entries[normalizePath(path)]
	return ok
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.entries[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	data := make([]byte, entry.CompressedSize)
	if _, err := a.file.ReadAt(data, int64(entry.Offset)); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if entry.Flags&flagCompressed == 0 {
		return data, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	result := make([]byte, entry.UncompressedSize)
	if _, err := io.ReadFull(zr, result); err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return result, nil
}

func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}
