package gifloop

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/bodgit/gifloop/decoder"
)

var (
	errBadHandle    = errors.New("gifloop: invalid handle")
	errNotSeekable  = errors.New("gifloop: file is not seekable")
	errClosedHandle = errors.New("gifloop: handle is closed")
)

// Source reads files from a directory of an fs.FS on behalf of a decoder.
// Every Open returns a new handle which is owned by the caller until it is
// passed to Close.
type Source struct {
	fsys    fs.FS
	dir     string
	handles int
}

type handle struct {
	f      fs.File
	closed bool
}

// NewSource returns a Source opening files relative to dir in fsys.
func NewSource(fsys fs.FS, dir string) *Source {
	return &Source{
		fsys: fsys,
		dir:  dir,
	}
}

// Handles returns the number of handles that have been opened and not yet
// closed.
func (s *Source) Handles() int {
	return s.handles
}

// Open opens the named file for reading and returns a handle and its size.
func (s *Source) Open(name string) (decoder.Handle, int64, error) {
	// Only names directly inside the directory can be opened
	if name != path.Base(name) || name == "." || name == ".." || !fs.ValidPath(name) {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	file := path.Join(s.dir, name)

	f, err := s.fsys.Open(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, 0, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}

	if info.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}

	s.handles++

	return &handle{f: f}, info.Size(), nil
}

func (s *Source) file(h decoder.Handle) (*handle, error) {
	hd, ok := h.(*handle)
	if !ok || hd == nil {
		return nil, errBadHandle
	}
	if hd.closed {
		return nil, errClosedHandle
	}
	return hd, nil
}

// Read reads up to len(p) bytes from h. It returns 0 and io.EOF at the end
// of the file.
func (s *Source) Read(h decoder.Handle, p []byte) (int, error) {
	hd, err := s.file(h)
	if err != nil {
		return 0, err
	}
	return hd.f.Read(p)
}

// Seek moves the read position of h to pos bytes from the start of the file.
func (s *Source) Seek(h decoder.Handle, pos int64) (int64, error) {
	hd, err := s.file(h)
	if err != nil {
		return 0, err
	}
	seeker, ok := hd.f.(io.Seeker)
	if !ok {
		return 0, errNotSeekable
	}
	return seeker.Seek(pos, io.SeekStart)
}

// Close releases h. Closing a nil or already closed handle does nothing.
func (s *Source) Close(h decoder.Handle) {
	hd, err := s.file(h)
	if err != nil {
		return
	}
	hd.closed = true
	s.handles--
	hd.f.Close()
}
