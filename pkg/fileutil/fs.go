package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// MIDIExtensions are the file extensions treated as Standard MIDI Files.
var MIDIExtensions = []string{".mid", ".midi", ".smf", ".kar"}

// Input is one file to decode.
type Input struct {
	// Path はファイルの実際のパス
	Path string
	// Name は出力名（拡張子なし、ディレクトリ入力では相対パス）
	Name string
}

// IsMIDIFile reports whether name has one of MIDIExtensions, ignoring case.
func IsMIDIFile(name string) bool {
	ext := path.Ext(name)
	for _, e := range MIDIExtensions {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// FindMIDIFiles walks root in fsys and returns the slash-separated paths of
// all MIDI files below it, sorted.
func FindMIDIFiles(fsys fs.FS, root string) ([]string, error) {
	var found []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// 隠しディレクトリは走査しない
			if p != root && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if IsMIDIFile(d.Name()) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	slices.Sort(found)
	return found, nil
}

// CollectInputs expands command line paths into input files. Directories are
// searched recursively; a file is accepted whatever its extension. Output
// names are made unique by appending a number.
func CollectInputs(paths []string) ([]Input, error) {
	var inputs []Input
	used := map[string]bool{}
	add := func(p, name string) {
		// 番号付きの名前も既存の名前と衝突しないようにする
		candidate := name
		for n := 1; used[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s_%d", name, n)
		}
		used[strings.ToLower(candidate)] = true
		inputs = append(inputs, Input{Path: p, Name: candidate})
	}

	for _, p := range paths {
		actual, info, err := ResolveInput(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(actual, stripExt(filepath.Base(actual)))
			continue
		}

		files, err := FindMIDIFiles(os.DirFS(actual), ".")
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(filepath.Join(actual, filepath.FromSlash(f)), stripExt(f))
		}
	}
	return inputs, nil
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}
