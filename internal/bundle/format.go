// Package bundle packs a run's output files into one checksummed archive.
//
// A bundle is a plain-text JSON header line followed by a gzip-compressed
// JSON payload. The header carries a SHA-256 checksum of the compressed
// bytes so integrity can be verified without decompressing.
package bundle

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/defense-datagen/internal/pathutil"
)

// FormatVersion is the current bundle format version.
const FormatVersion = 1

// MaxDecompressedSize is the maximum allowed size of a decompressed payload (200MB).
const MaxDecompressedSize = 200 * 1024 * 1024

// ErrChecksumMismatch is returned when the payload does not match the header checksum.
var ErrChecksumMismatch = errors.New("bundle checksum mismatch")

// Header is the plain-text first line of a bundle file.
type Header struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Checksum  string    `json:"checksum"`
	FileCount int       `json:"file_count"`
	RunID     string    `json:"run_id,omitempty"`
}

// File is one archived output file.
type File struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

type payload struct {
	Files []File `json:"files"`
}

// Write archives the named files from dir into a bundle at path.
// Names are stored relative to dir.
func Write(path, dir string, names []string, runID string, createdAt time.Time) (*Header, error) {
	p := payload{Files: make([]File, 0, len(names))}
	for _, name := range names {
		src := filepath.Join(dir, name)
		content, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", pathutil.RedactPath(src), err)
		}
		p.Files = append(p.Files, File{Name: name, Content: content})
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	var compressed bytes.Buffer
	gzw, err := gzip.NewWriterLevel(&compressed, gzip.DefaultCompression)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := gzw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing payload: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("closing gzip writer: %w", err)
	}

	header := &Header{
		Version:   FormatVersion,
		CreatedAt: createdAt.UTC(),
		Checksum:  checksum(compressed.Bytes()),
		FileCount: len(p.Files),
		RunID:     runID,
	}
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("marshaling header: %w", err)
	}

	if err := pathutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}

	// header line + newline + compressed payload
	out := make([]byte, 0, len(headerBytes)+1+compressed.Len())
	out = append(out, headerBytes...)
	out = append(out, '\n')
	out = append(out, compressed.Bytes()...)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return nil, fmt.Errorf("writing bundle %s: %w", pathutil.RedactPath(path), err)
	}

	return header, nil
}

// Verify checks the bundle's checksum without decompressing it.
func Verify(path string) (*Header, error) {
	header, compressed, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	if actual := checksum(compressed); actual != header.Checksum {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, header.Checksum, actual)
	}
	return header, nil
}

// Read verifies and decompresses a bundle.
func Read(path string) (*Header, []File, error) {
	header, compressed, err := readRaw(path)
	if err != nil {
		return nil, nil, err
	}
	if actual := checksum(compressed); actual != header.Checksum {
		return nil, nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, header.Checksum, actual)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gzr.Close()

	decompressed, err := io.ReadAll(io.LimitReader(gzr, MaxDecompressedSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("decompressing payload: %w", err)
	}
	if int64(len(decompressed)) > MaxDecompressedSize {
		return nil, nil, fmt.Errorf("decompressed payload exceeds maximum size of %d bytes", MaxDecompressedSize)
	}

	var p payload
	if err := json.Unmarshal(decompressed, &p); err != nil {
		return nil, nil, fmt.Errorf("parsing payload: %w", err)
	}
	if len(p.Files) != header.FileCount {
		return nil, nil, fmt.Errorf("payload has %d files, header declares %d", len(p.Files), header.FileCount)
	}
	return header, p.Files, nil
}

// Extract writes every file in the bundle into dir. Names that would
// resolve outside dir are rejected.
func Extract(path, dir string) (*Header, error) {
	header, files, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := pathutil.EnsureDir(dir); err != nil {
		return nil, err
	}
	for _, f := range files {
		dst := filepath.Join(dir, f.Name)
		if err := pathutil.Within(dst, dir); err != nil {
			return nil, fmt.Errorf("bundle entry %q rejected: %w", f.Name, err)
		}
		if err := os.WriteFile(dst, f.Content, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", pathutil.RedactPath(dst), err)
		}
	}
	return header, nil
}

func readRaw(path string) (*Header, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening bundle: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	headerLine, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header line: %w", err)
	}

	var header Header
	if err := json.Unmarshal(bytes.TrimSpace(headerLine), &header); err != nil {
		return nil, nil, fmt.Errorf("parsing header: %w", err)
	}
	if header.Version != FormatVersion {
		return nil, nil, fmt.Errorf("unsupported bundle version %d", header.Version)
	}

	compressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("reading compressed payload: %w", err)
	}
	return &header, compressed, nil
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(hash[:])
}
