package main

import (
	"os"
)

// osFileTrait is a pool.DescriptorTrait[*os.File] backed directly by
// the operating system, in the same spirit as
// pkg/filesystem/directory_backed_file_pool.go's use of plain os-level
// file handles rather than an in-memory stand-in.
type osFileTrait struct{}

func (osFileTrait) Open(path string, write bool) (*os.File, error) {
	if write {
		return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	}
	return os.Open(path)
}

func (osFileTrait) Close(fd *os.File) error {
	return fd.Close()
}
