package utils

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// ErrEntryTooLarge is returned when an archive entry exceeds the read limit.
var ErrEntryTooLarge = errors.New("archive entry too large")

// ArchiveEntry is one named file inside a zip archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// WriteZip writes entries, deflated, in the given order.
func WriteZip(w io.Writer, entries []ArchiveEntry, modified time.Time) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			zw.Close()
			return fmt.Errorf("create %s: %w", e.Name, err)
		}
		if _, err := fw.Write(e.Data); err != nil {
			zw.Close()
			return fmt.Errorf("write %s: %w", e.Name, err)
		}
	}
	return zw.Close()
}

// WriteZipFile builds the archive in memory and renames it over path, so a
// failed export never leaves a truncated archive behind. Returns the size.
func WriteZipFile(path string, entries []ArchiveEntry, modified time.Time) (int64, error) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, entries, modified); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create archive directory: %w", err)
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return 0, err
	}
	tmp := f.Name()
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return int64(buf.Len()), nil
}

// ReadZipEntries opens the archive at path and returns the contents of the
// named root-level entries that are present. Other entries are ignored.
func ReadZipEntries(path string, names []string, maxEntryBytes int64) (map[string][]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	found := make(map[string][]byte, len(names))
	for _, zf := range zr.File {
		if _, ok := wanted[zf.Name]; !ok || zf.FileInfo().IsDir() {
			continue
		}
		if _, dup := found[zf.Name]; dup {
			continue
		}

		data, err := readEntry(zf, maxEntryBytes)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", zf.Name, err)
		}
		found[zf.Name] = data
	}
	return found, nil
}

func readEntry(zf *zip.File, maxBytes int64) ([]byte, error) {
	rc, err := zf.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrEntryTooLarge
	}
	return data, nil
}
