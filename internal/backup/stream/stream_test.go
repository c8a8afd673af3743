package stream

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

type testEntity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func buildZip(t *testing.T, path string, entities []testEntity) *zip.Reader {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := NewWriter(zw, path)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entities {
		if err := w.Write(e); err != nil {
			t.Fatal(err)
		}
	}
	if w.Count() != len(entities) {
		t.Errorf("Count() = %d, want %d", w.Count(), len(entities))
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	return zr
}

func TestWriterReader_RoundTrip(t *testing.T) {
	entities := []testEntity{
		{ID: "1", Name: "Robusto"},
		{ID: "2", Name: "Toro"},
		{ID: "3", Name: "Churchill"},
	}
	zr := buildZip(t, "entities/test.jsonl", entities)

	rc, err := OpenFile(zr, "entities/test.jsonl")
	if err != nil {
		t.Fatal(err)
	}

	got, err := Collect[testEntity](rc)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(entities) {
		t.Fatalf("got %d entities, want %d", len(got), len(entities))
	}
	for i, e := range got {
		if e != entities[i] {
			t.Errorf("entity %d: got %+v, want %+v", i, e, entities[i])
		}
	}
}

func TestOpenFile_NotFound(t *testing.T) {
	zr := buildZip(t, "a.jsonl", nil)

	if _, err := OpenFile(zr, "nonexistent.jsonl"); err != ErrFileNotFound {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestReader_ContinuesOnParseError(t *testing.T) {
	jsonl := `{"id":"1","name":"Good"}
{bad json}

{"id":"2","name":"Also Good"}
`
	reader := NewReader[testEntity](io.NopCloser(strings.NewReader(jsonl)))

	var good []testEntity
	var failures int
	for entity, err := range reader.All() {
		if err != nil {
			failures++
			continue
		}
		good = append(good, entity)
	}

	if len(good) != 2 {
		t.Errorf("got %d good entities, want 2", len(good))
	}
	if failures != 1 {
		t.Errorf("got %d errors, want 1", failures)
	}
}

func TestCollect_StopsOnError(t *testing.T) {
	_, err := Collect[testEntity](io.NopCloser(strings.NewReader("{\"id\":\"1\"}\nnope\n")))
	if err == nil {
		t.Error("expected error")
	}
}
