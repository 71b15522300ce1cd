package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// Entry is one file in a portrait bundle.
type Entry struct {
	Name string
	Data []byte
}

// WriteArchive writes the entries to w as a zip archive.
func WriteArchive(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, entry := range entries {
		f, err := zw.Create(entry.Name)
		if err != nil {
			return fmt.Errorf("zip: create %s: %w", entry.Name, err)
		}
		if _, err := f.Write(entry.Data); err != nil {
			return fmt.Errorf("zip: write %s: %w", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zip: close archive: %w", err)
	}
	return nil
}

// Archive renders the entries as an in-memory zip, for handlers that need a
// sized payload before responding.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := WriteArchive(buf, entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
