package utils

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// markdownExts are the file extensions treated as markdown documents.
var markdownExts = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdown":    true,
}

// IsMarkdownFile reports whether path has a markdown extension.
func IsMarkdownFile(path string) bool {
	return markdownExts[strings.ToLower(filepath.Ext(path))]
}

// FindMarkdownFiles recursively finds all markdown files in dir, skipping
// hidden directories such as .git.
func FindMarkdownFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if IsMarkdownFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// ExpandPaths replaces every directory in paths with the markdown files it
// contains. Files are kept as given, whatever their extension.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			// Missing files are reported by the caller when read
			files = append(files, path)
			continue
		}

		found, err := FindMarkdownFiles(path)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}
