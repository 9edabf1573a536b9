package classpath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/kingrea/bootstrap/internal/failure"
)

// DefaultSuffix marks files treated as loadable package archives.
const DefaultSuffix = ".zip"

// Scan walks root depth-first and returns every regular file whose name ends
// in suffix, in the order the file system enumerates entries. A root that is
// not an existing directory contributes nothing.
func Scan(fsys afero.Fs, root, suffix string) ([]string, error) {
	info, err := fsys.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, nil
	}
	var archives []string
	if err := scanDir(fsys, root, suffix, &archives); err != nil {
		return nil, err
	}
	return archives, nil
}

func scanDir(fsys afero.Fs, dir, suffix string, archives *[]string) error {
	f, err := fsys.Open(dir)
	if err != nil {
		return failure.Wrap(failure.ErrScan, dir, "Cannot read directory "+dir+": "+err.Error(), err)
	}
	entries, err := f.Readdir(-1)
	f.Close()
	if err != nil {
		return failure.Wrap(failure.ErrScan, dir, "Cannot read directory "+dir+": "+err.Error(), err)
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		mode := entry.Mode()
		if mode&os.ModeSymlink != 0 {
			// Symlinked files count; symlinked directories are not followed.
			target, err := fsys.Stat(path)
			if err != nil || target.IsDir() {
				continue
			}
			mode = target.Mode()
		}
		switch {
		case mode.IsDir():
			if err := scanDir(fsys, path, suffix, archives); err != nil {
				return err
			}
		case mode.IsRegular() && strings.HasSuffix(entry.Name(), suffix):
			*archives = append(*archives, path)
		}
	}
	return nil
}
