// Package fileutil locates Standard MIDI Files on disk.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FindFileCaseInsensitive searches dir for a file whose name equals filename
// ignoring case, and returns its actual path.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/dir", "SONG.MID")
//	// Will find "song.mid", "Song.Mid", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	name, err := FindFileCaseInsensitiveFS(os.DirFS(dir), ".", filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", dir, err)
	}
	return filepath.Join(dir, filepath.FromSlash(name)), nil
}

// FindFileCaseInsensitiveFS is FindFileCaseInsensitive on an fs.FS. The
// returned path uses forward slashes.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if name, ok := matchEntry(entries, filename); ok {
		if dir == "." {
			return name, nil
		}
		return dir + "/" + name, nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// matchEntry 大文字小文字を無視してファイル名を比較する
func matchEntry(entries []fs.DirEntry, filename string) (string, bool) {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return entry.Name(), true
		}
	}
	return "", false
}

// ResolveInput returns path unchanged if it exists. Otherwise the last path
// element is looked up case-insensitively in its parent directory, so
// SONG.MID finds song.mid on case-sensitive file systems.
func ResolveInput(path string) (string, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err == nil {
		return path, info, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", nil, err
	}

	actual, findErr := FindFileCaseInsensitive(filepath.Dir(path), filepath.Base(path))
	if findErr != nil {
		// 元のエラーの方が分かりやすい
		return "", nil, err
	}
	info, err = os.Stat(actual)
	if err != nil {
		return "", nil, err
	}
	return actual, info, nil
}
