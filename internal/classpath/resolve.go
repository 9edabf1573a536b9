// Package classpath discovers package archives and assembles the ordered
// module-resolution context a launch resolves its entry point against.
package classpath

import (
	"net/url"
	"path/filepath"

	"github.com/kingrea/bootstrap/internal/failure"
)

// Resolve validates a directory reference. The reference is returned
// unchanged; existence is only checked when the directory is scanned.
func Resolve(dir string) (string, error) {
	if dir == "" {
		return "", failure.New(failure.ErrInvalidDirectory, dir, "null directory")
	}
	return dir, nil
}

// Kind distinguishes archive locations from plain directories.
type Kind int

const (
	KindDirectory Kind = iota
	KindArchive
)

func (k Kind) String() string {
	if k == KindArchive {
		return "archive"
	}
	return "directory"
}

// Location is one normalized entry of a resolution context.
type Location struct {
	Path string
	URL  *url.URL
	Kind Kind
}

func (l Location) String() string {
	return l.URL.String()
}

var absPath = filepath.Abs

func toLocation(path string, kind Kind) (Location, error) {
	abs, err := absPath(path)
	if err != nil {
		return Location{}, failure.Wrap(failure.ErrPathConversion, path,
			"Conversion of path to location failed: "+path, err)
	}
	u := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	if kind == KindDirectory {
		u.Path += "/"
	}
	return Location{Path: abs, URL: u, Kind: kind}, nil
}
