package xlsxparser

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
)

var errNothingSalvaged = errors.New("no damaged entries to drop")

// salvage repacks the archive from the entries that still open and
// decompress with a valid checksum. It returns the names it dropped and
// fails when nothing was dropped, since the repacked archive would decode
// exactly like the original.
func salvage(data []byte) ([]byte, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, err
	}

	var (
		buf     bytes.Buffer
		dropped []string
	)
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		content, err := readEntry(f)
		if err != nil {
			dropped = append(dropped, f.Name)
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, nil, err
		}
		if _, err := w.Write(content); err != nil {
			return nil, nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, nil, err
	}
	if len(dropped) == 0 {
		return nil, nil, errNothingSalvaged
	}
	return buf.Bytes(), dropped, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
