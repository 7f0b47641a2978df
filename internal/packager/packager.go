// Package packager bundles successful results into a ZIP archive.
package packager

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"time"

	"fileforge/internal/domain/transform"

	"github.com/klauspost/compress/flate"
)

// archiveEpoch is the modification time of every entry, so identical
// inputs produce byte-identical archives.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Packager writes deterministic ZIP archives.
type Packager struct {
	logger *slog.Logger
}

// New creates a new packager
func New(logger *slog.Logger) *Packager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Packager{logger: logger}
}

// Pack writes every Success result, in order, into one archive and returns
// it with the entry names used. Other results are skipped.
func (p *Packager) Pack(results []transform.JobResult) ([]byte, []string, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	entries := EntryNames(results)
	next := 0
	for _, r := range results {
		if r.Status != transform.StatusSuccess {
			continue
		}
		if err := writeZipBytes(zw, entries[next], methodFor(r.MimeType), r.Output); err != nil {
			return nil, nil, err
		}
		next++
	}

	if err := zw.Close(); err != nil {
		return nil, nil, fmt.Errorf("close zip: %w", err)
	}

	p.logger.Debug("Packed archive", "entries", len(entries), "size", buf.Len())
	return buf.Bytes(), entries, nil
}

// methodFor stores formats that are already compressed.
func methodFor(mime string) uint16 {
	switch mime {
	case "image/jpeg", "image/png", "image/webp", "application/pdf":
		return zip.Store
	}
	return zip.Deflate
}

func writeZipBytes(writer *zip.Writer, name string, method uint16, payload []byte) error {
	w, err := writer.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   method,
		Modified: archiveEpoch,
	})
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}
