// Package tmpfile stages remote or stdin input on disk before a parser
// reads it, the same os.CreateTemp-plus-Remove-on-error shape as
// internal/util.WriteFileAtomic, without the final rename: the staged
// file is read and discarded rather than moved into place. Grounded in original_source/librdf's
// rdf_files.c, which stages a fetched URI into a local file before
// handing it to a syntax parser.
package tmpfile

import (
	"io"
	"os"
)

// Stage copies r into a new temp file under dir (os.TempDir() if dir is
// empty) named with the given prefix, and returns its path. The caller
// owns cleanup via Remove.
func Stage(dir, prefix string, r io.Reader) (path string, err error) {
	f, err := os.CreateTemp(dir, prefix+"-*")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// Remove deletes a path returned by Stage, ignoring a not-exist error.
func Remove(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// ReadAll stages r into a temp file, reads it back fully, removes it,
// and returns the bytes. Only the content is returned; the staged path
// is removed before ReadAll returns.
func ReadAll(dir, prefix string, r io.Reader) ([]byte, error) {
	path, err := Stage(dir, prefix, r)
	if err != nil {
		return nil, err
	}
	defer Remove(path)
	return os.ReadFile(path)
}
