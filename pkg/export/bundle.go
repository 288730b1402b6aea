package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/zurustar/densemidi/pkg/smf"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

const (
	// ManifestFile はバンドル内のメタデータファイル名
	ManifestFile = "manifest.json"
	// TemposFile はテンポマップの出力ファイル名
	TemposFile = "tempos.npy"
)

// Manifest describes the files of one exported bundle.
type Manifest struct {
	Source       string      `json:"source"`
	Format       uint16      `json:"format"`
	TicksPerBeat uint16      `json:"ticksPerBeat"`
	TimeUnit     string      `json:"timeUnit"`
	Tempos       string      `json:"tempos,omitempty"`
	Tracks       []TrackInfo `json:"tracks"`
}

// TrackInfo はトラック1本分の出力情報
type TrackInfo struct {
	File   string `json:"file"`
	Name   string `json:"name,omitempty"`
	Events int    `json:"events"`
}

// TrackFile returns the file name used for track i.
func TrackFile(i int) string {
	return fmt.Sprintf("track_%03d.npy", i)
}

// WriteBundle writes f into dir: one .npy per track, the tempo map while
// times are still in ticks, and a manifest. dir is created if needed.
func WriteBundle(dir, source string, f *smf.File) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	m := &Manifest{
		Source:       source,
		Format:       f.Format,
		TicksPerBeat: f.TicksPerBeat(),
		TimeUnit:     f.Unit().String(),
		Tracks:       make([]TrackInfo, 0, len(f.Tracks)),
	}

	for i := range f.Tracks {
		tr := &f.Tracks[i]
		info := TrackInfo{File: TrackFile(i), Name: DecodeName(tr.Name), Events: tr.Len()}
		err := writeFile(filepath.Join(dir, info.File), func(w io.Writer) error {
			return WriteEventsNPY(w, tr.Events)
		})
		if err != nil {
			return nil, err
		}
		m.Tracks = append(m.Tracks, info)
	}

	// 実時間に変換済みならテンポマップは不要
	if f.Unit() == smf.TimeTicks {
		m.Tempos = TemposFile
		err := writeFile(filepath.Join(dir, TemposFile), func(w io.Writer) error {
			return WriteTemposNPY(w, f.Tempos)
		})
		if err != nil {
			return nil, err
		}
	}

	err := writeFile(filepath.Join(dir, ManifestFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeName converts a raw track name to UTF-8. Names that are not valid
// UTF-8 are read as Shift-JIS, which older Japanese sequencers write.
func DecodeName(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		// 変換に失敗した場合は不正なバイトを置換して返す
		return strings.ToValidUTF8(string(raw), "�")
	}
	return string(decoded)
}

func writeFile(path string, fill func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	w := bufio.NewWriter(out)
	if err := fill(w); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return out.Close()
}
