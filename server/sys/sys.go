package sys

import (
	"io/fs"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// FreeSpace returns the free bytes on the filesystem holding the given
// directory, shown next to the download folder picker.
func FreeSpace(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}

	return usage.Free, nil
}

// DirectoryTree returns a flattened listing of the download directory.
func DirectoryTree(root string) ([]string, error) {
	tree := []string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			tree = append(tree, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tree, nil
}
