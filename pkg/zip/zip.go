// Package zip streams stored files into a zip archive.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"
)

// Entry is one file of the archive. Open is called only when the entry is written.
type Entry struct {
	Filename string
	Modified time.Time
	Open     func() (io.ReadCloser, error)
}

// Write streams entries into w without buffering whole files. Entries are
// stored uncompressed since video containers are already compressed.
// Duplicate names get a numeric suffix.
func Write(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(entries))
	for _, e := range entries {
		name := uniqueName(used, e.Filename)
		if err := writeEntry(zw, name, e); err != nil {
			_ = zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("zip: finish archive: %w", err)
	}
	return nil
}

func writeEntry(zw *zip.Writer, name string, e Entry) error {
	rc, err := e.Open()
	if err != nil {
		return fmt.Errorf("zip: open %s: %w", name, err)
	}
	defer func() {
		_ = rc.Close()
	}()
	hdr := &zip.FileHeader{Name: name, Method: zip.Store, Modified: e.Modified}
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", name, err)
	}
	if _, err := io.Copy(dst, rc); err != nil {
		return fmt.Errorf("zip: write %s: %w", name, err)
	}
	return nil
}

func uniqueName(used map[string]int, name string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "video.mp4"
	}
	n := used[name]
	used[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + strconv.Itoa(n+1) + ext
}
