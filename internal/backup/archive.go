// Package backup archives assembly sources before the compaction loop
// starts mutating them.
//
// archive/zip is stdlib, used deliberately: nothing in the retrieved
// example pack brings in a third-party archiver, and a flat zip of a
// handful of source files has no feature this tool needs that the
// standard library lacks.
package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Archive writes every path in sources into a new zip file at dest,
// each entry named by its base filename.
func Archive(dest string, sources []string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	for _, src := range sources {
		if err := addFile(zw, src); err != nil {
			return fmt.Errorf("backup: archiving %s: %w", src, err)
		}
	}

	return nil
}

func addFile(zw *zip.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(filepath.Base(src))
	if err != nil {
		return err
	}

	_, err = io.Copy(w, in)
	return err
}
