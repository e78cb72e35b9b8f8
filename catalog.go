package gifloop

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// ScanOptions control which directory entries Scan puts in the playlist.
type ScanOptions struct {
	// Extension is matched case-insensitively, for example ".gif"
	Extension string
	// Capacity limits the playlist length, zero means no limit
	Capacity int
	// SkipHidden ignores entries starting with a dot
	SkipHidden bool
}

// Playlist is an ordered list of file names, relative to the scanned
// directory.
type Playlist []string

// Catalog is the result of scanning a directory.
type Catalog struct {
	Playlist Playlist
	// Found counts every matching entry, including any that did not fit in
	// the playlist
	Found int
}

// Truncated reports whether matching entries were dropped from the playlist.
func (c Catalog) Truncated() bool {
	return c.Found > len(c.Playlist)
}

// Scan lists dir non-recursively and returns the files whose extension
// matches. Names are stored as found, only the comparison is case-insensitive.
// If dir cannot be read an empty Catalog is returned along with an error
// wrapping ErrStorageUnavailable.
func Scan(fsys fs.FS, dir string, opts ScanOptions) (Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	ext := strings.ToLower(opts.Extension)

	var c Catalog
	for _, entry := range entries {
		name := entry.Name()

		if entry.IsDir() {
			continue
		}

		// Ignore any hidden files, otherwise we end up trying to play the
		// "._" files macOS leaves on removable media
		if opts.SkipHidden && name[0] == '.' {
			continue
		}

		if strings.ToLower(path.Ext(name)) != ext {
			continue
		}

		c.Found++
		if opts.Capacity > 0 && len(c.Playlist) >= opts.Capacity {
			continue
		}
		c.Playlist = append(c.Playlist, name)
	}

	return c, nil
}
