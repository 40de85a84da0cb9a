package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/hyperjump/patsearch/internal/models"
)

const (
	fileMagic   = "PSVM"
	fileVersion = uint32(1)
	// magic plus version, dims and rows
	headerSize = int64(len(fileMagic) + 12)
	// maxIDLen guards against reading garbage lengths from a corrupt file.
	maxIDLen = 1 << 16
)

// FileStore persists the embedding matrix in a single binary file.
// Format (little-endian): magic "PSVM", version u32, dimensions u32, rows u32,
// then per row: id length u32, id bytes, dimensions*float32.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("embeddings path is required")
	}
	return &FileStore{path: path}, nil
}

// Kind returns StoreKindFile.
func (s *FileStore) Kind() StoreKind { return StoreKindFile }

// Path returns the backing file path.
func (s *FileStore) Path() string { return s.path }

// Save writes vectors to a temporary file next to the target and renames it into place,
// so a failed write never replaces a good matrix. The directory is created if needed.
func (s *FileStore) Save(ctx context.Context, docs []*models.Document, vectors [][]float32) error {
	if err := ValidateMatrix(docs, nil, vectors); err != nil {
		return &StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("%w: %v", ErrSaveFailed, err)}
	}
	if err := s.write(ctx, docs, vectors); err != nil {
		return &StoreError{Op: "save", Path: s.path, Err: fmt.Errorf("%w: %v", ErrSaveFailed, err)}
	}
	return nil
}

func (s *FileStore) write(ctx context.Context, docs []*models.Document, vectors [][]float32) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create embeddings dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	w := bufio.NewWriter(tmp)
	dims := 0
	if len(vectors) > 0 {
		dims = len(vectors[0])
	}
	if _, err := w.WriteString(fileMagic); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	for _, v := range []uint32{fileVersion, uint32(dims), uint32(len(vectors))} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	buf := make([]byte, dims*4)
	for i, vec := range vectors {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		id := []byte(docs[i].ID)
		if err := binary.Write(w, binary.LittleEndian, uint32(len(id))); err != nil {
			return fmt.Errorf("write id len: %w", err)
		}
		if _, err := w.Write(id); err != nil {
			return fmt.Errorf("write id: %w", err)
		}
		putFloat32s(buf, vec)
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Load reads the matrix and checks it against docs. A missing file wraps ErrNotFound;
// a truncated file, wrong row count, or a row id that differs from the document id at the
// same position wraps ErrShapeMismatch.
func (s *FileStore) Load(ctx context.Context, docs []*models.Document) ([][]float32, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StoreError{Op: "load", Path: s.path, Err: ErrNotFound}
		}
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}

	ids, vectors, err := readMatrix(ctx, bufio.NewReader(f), info.Size(), len(docs))
	if err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}
	if err := ValidateMatrix(docs, ids, vectors); err != nil {
		return nil, &StoreError{Op: "load", Path: s.path, Err: err}
	}
	return vectors, nil
}

// readMatrix checks the header against the expected row count and the file size
// before allocating anything sized from it.
func readMatrix(ctx context.Context, r io.Reader, size int64, wantRows int) ([]string, [][]float32, error) {
	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, nil, fmt.Errorf("%w: read magic: %v", ErrShapeMismatch, err)
	}
	if string(magic) != fileMagic {
		return nil, nil, fmt.Errorf("%w: not an embeddings file", ErrShapeMismatch)
	}
	var version, dims, rows uint32
	for _, p := range []*uint32{&version, &dims, &rows} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, nil, fmt.Errorf("%w: read header: %v", ErrShapeMismatch, err)
		}
	}
	if version != fileVersion {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", ErrShapeMismatch, version)
	}
	if rows > 0 && dims == 0 {
		return nil, nil, fmt.Errorf("%w: zero dimensions", ErrShapeMismatch)
	}
	if int64(rows) != int64(wantRows) {
		return nil, nil, fmt.Errorf("%w: file has %d rows, corpus has %d documents", ErrShapeMismatch, rows, wantRows)
	}
	if rows > 0 {
		perRow := 4 + 4*uint64(dims)
		body := uint64(0)
		if size > headerSize {
			body = uint64(size - headerSize)
		}
		if perRow > body/uint64(rows) {
			return nil, nil, fmt.Errorf("%w: %d rows of %d dimensions exceed file size %d", ErrShapeMismatch, rows, dims, size)
		}
	}

	ids := make([]string, 0, rows)
	vectors := make([][]float32, 0, rows)
	buf := make([]byte, int(dims)*4)
	for i := uint32(0); i < rows; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		var idLen uint32
		if err := binary.Read(r, binary.LittleEndian, &idLen); err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: read id len: %v", ErrShapeMismatch, i, err)
		}
		if idLen > maxIDLen {
			return nil, nil, fmt.Errorf("%w: row %d: id length %d", ErrShapeMismatch, i, idLen)
		}
		id := make([]byte, idLen)
		if _, err := io.ReadFull(r, id); err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: read id: %v", ErrShapeMismatch, i, err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, nil, fmt.Errorf("%w: row %d: read vector: %v", ErrShapeMismatch, i, err)
		}
		ids = append(ids, string(id))
		vectors = append(vectors, getFloat32s(buf))
	}
	return ids, vectors, nil
}

func putFloat32s(dst []byte, s []float32) {
	for i, v := range s {
		binary.LittleEndian.PutUint32(dst[i*4:(i+1)*4], math.Float32bits(v))
	}
}

func getFloat32s(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4 : (i+1)*4]))
	}
	return out
}

// EncodeFloat32s returns the little-endian byte form of a vector.
func EncodeFloat32s(v []float32) []byte {
	b := make([]byte, len(v)*4)
	putFloat32s(b, v)
	return b
}

// DecodeFloat32s parses a little-endian byte form produced by EncodeFloat32s.
func DecodeFloat32s(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: blob length %d is not a multiple of 4", ErrShapeMismatch, len(b))
	}
	return getFloat32s(b), nil
}
