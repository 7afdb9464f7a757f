package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// sqliteSidecars are the files SQLite keeps next to a database while it is open
// or recovering.
var sqliteSidecars = []string{"-wal", "-shm", "-journal"}

// DiskUsage is the on-disk footprint of the content snapshot and its keyword index.
type DiskUsage struct {
	DatabaseBytes int64 `json:"database_bytes"`
	IndexBytes    int64 `json:"index_bytes"`
}

// Total returns database and index bytes together.
func (u DiskUsage) Total() int64 {
	return u.DatabaseBytes + u.IndexBytes
}

// ContentDiskUsage measures the SQLite database at databasePath, including its
// WAL, shared-memory and journal files, and the Bleve index directory at indexPath.
// Paths that do not exist count as zero.
func ContentDiskUsage(databasePath, indexPath string) (DiskUsage, error) {
	var u DiskUsage
	if databasePath != "" {
		for _, suffix := range append([]string{""}, sqliteSidecars...) {
			n, err := pathSize(databasePath + suffix)
			if err != nil {
				return DiskUsage{}, err
			}
			u.DatabaseBytes += n
		}
	}
	if indexPath != "" {
		n, err := pathSize(indexPath)
		if err != nil {
			return DiskUsage{}, err
		}
		u.IndexBytes = n
	}
	return u, nil
}

// pathSize returns the size of a file or the summed size of a directory tree.
func pathSize(p string) (int64, error) {
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		total += fi.Size()
		return nil
	})
	return total, err
}
