// Package fs wraps the file system calls used by unblocker so that long
// paths keep working on Windows. All paths are passed through fixpath before
// they reach the OS.
package fs

import (
	"os"
)

// Remove removes the named file or (empty) directory.
func Remove(name string) error {
	return os.Remove(fixpath(name))
}

// OpenFile opens the named file with the specified flag.
func OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(fixpath(name), flag, perm)
}

// Stat returns a FileInfo describing the named file.
func Stat(name string) (os.FileInfo, error) {
	return os.Stat(fixpath(name))
}

// Lstat returns the FileInfo structure describing the named file. If the file
// is a symbolic link, the returned FileInfo describes the symbolic link.
func Lstat(name string) (os.FileInfo, error) {
	return os.Lstat(fixpath(name))
}

// ReadDir reads the named directory, returning all its directory entries
// sorted by filename.
func ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(fixpath(name))
}

// MkdirAll creates a directory named path, along with any necessary parents.
func MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(fixpath(path), perm)
}
