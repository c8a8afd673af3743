package stream

import (
	"archive/zip"
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"iter"
)

// ErrFileNotFound indicates a file was not found in the backup archive.
var ErrFileNotFound = errors.New("file not found in backup")

// maxLine bounds a single JSONL record.
const maxLine = 1 << 20

// OpenFile finds and opens a file from a zip archive.
func OpenFile(zr *zip.Reader, path string) (io.ReadCloser, error) {
	rc, err := zr.Open(path)
	if err != nil {
		return nil, ErrFileNotFound
	}
	return rc, nil
}

// Reader streams entities from a JSONL file in a zip archive.
type Reader[T any] struct {
	rc      io.ReadCloser
	scanner *bufio.Scanner
}

// NewReader creates a streaming reader for type T.
func NewReader[T any](rc io.ReadCloser) *Reader[T] {
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader[T]{rc: rc, scanner: sc}
}

// All returns an iterator over all entities in the file. A malformed line
// yields an error and iteration continues with the next one. The file is
// closed when iteration ends.
func (r *Reader[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer r.rc.Close()

		for r.scanner.Scan() {
			line := r.scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var entity T
			if err := json.Unmarshal(line, &entity); err != nil {
				var zero T
				if !yield(zero, err) {
					return
				}
				continue
			}
			if !yield(entity, nil) {
				return
			}
		}

		if err := r.scanner.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect reads every entity, stopping at the first error.
func Collect[T any](rc io.ReadCloser) ([]T, error) {
	var out []T
	for entity, err := range NewReader[T](rc).All() {
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}
