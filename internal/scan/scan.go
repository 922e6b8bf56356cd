package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stemzipper/internal/packerr"
	"stemzipper/internal/packing"
)

// CandidateFile is a supported audio file found in the source folder.
type CandidateFile struct {
	Path      string
	Size      int64
	Extension string
}

// Scan lists the regular files directly inside dir whose extension (matched
// case-insensitively) is in extensions, sorted by name.
func Scan(dir string, extensions []string) ([]CandidateFile, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, packerr.Wrap(packerr.ErrInvalidPath, "scan", "resolve", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, packerr.Wrap(packerr.ErrInvalidPath, "scan", "stat", abs, err)
	}
	if !info.IsDir() {
		return nil, packerr.Wrap(packerr.ErrInvalidPath, "scan", "stat", fmt.Sprintf("%s is not a directory", abs), nil)
	}

	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, packerr.Wrap(packerr.ErrInvalidPath, "scan", "read dir", abs, err)
	}
	// ReadDir returns entries sorted by name.
	var files []CandidateFile
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := allowed[ext]; !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			// Vanished between ReadDir and Info.
			continue
		}
		files = append(files, CandidateFile{
			Path:      filepath.Join(abs, entry.Name()),
			Size:      fi.Size(),
			Extension: ext,
		})
	}
	return files, nil
}

// Items converts candidates into packer items numbered in discovery order.
func Items(files []CandidateFile) []packing.Item {
	items := make([]packing.Item, len(files))
	for i, f := range files {
		items[i] = packing.Item{Path: f.Path, Size: f.Size, Order: i}
	}
	return items
}
