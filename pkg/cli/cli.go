package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/zurustar/densemidi/pkg/smf"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	Inputs    []string    // 入力ファイルまたはディレクトリ
	OutDir    string      // 出力ディレクトリ
	Check     bool        // 解析のみ行い結果を表示するモード
	Jobs      int         // 並列デコード数
	LogLevel  string      // ログレベル（debug, info, warn, error）
	LogFormat string      // ログ形式（text, json）
	ShowHelp  bool        // ヘルプ表示フラグ
	Options   smf.Options // デコードと変換のオプション
}

// DefaultOutDir は出力先が指定されなかったときのディレクトリ
const DefaultOutDir = "out"

// ErrNoInput 入力が1つも指定されていない
var ErrNoInput = errors.New("no input files")

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	config := &Config{Options: smf.DefaultOptions()}
	opts := &config.Options

	var program int
	fs := newFlagSet(config, &program)

	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		return nil, err
	}
	if config.ShowHelp {
		return config, nil
	}

	// 明示的に指定されたフラグ
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !set["log-level"] && !set["l"] {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}
	if !set["jobs"] && !set["j"] {
		if jobsEnv := os.Getenv("DENSEMIDI_JOBS"); jobsEnv != "" {
			n, err := strconv.Atoi(jobsEnv)
			if err != nil {
				return nil, fmt.Errorf("invalid DENSEMIDI_JOBS: %q", jobsEnv)
			}
			config.Jobs = n
		}
	}
	if config.OutDir == "" {
		config.OutDir = os.Getenv("DENSEMIDI_OUT")
	}
	if config.OutDir == "" {
		config.OutDir = DefaultOutDir
	}

	// 並列数の検証
	if config.Jobs < 0 {
		return nil, fmt.Errorf("jobs must be non-negative, got %d", config.Jobs)
	}
	if config.Jobs == 0 {
		config.Jobs = runtime.GOMAXPROCS(0)
	}

	// 音色番号の検証
	if program < 0 || program > 0x7F {
		return nil, fmt.Errorf("program must be between 0 and 127, got %d", program)
	}
	opts.DefaultProgram = uint8(program)

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}
	if config.LogFormat != "text" && config.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format: %s (must be text or json)", config.LogFormat)
	}

	// 位置引数（入力ファイルまたはディレクトリ）
	config.Inputs = fs.Args()
	if len(config.Inputs) == 0 {
		return nil, ErrNoInput
	}

	return config, nil
}

// newFlagSet フラグ定義をConfigに結び付ける
func newFlagSet(config *Config, program *int) *flag.FlagSet {
	fs := flag.NewFlagSet("densemidi", flag.ContinueOnError)
	opts := &config.Options

	fs.BoolVar(&opts.NotesOnly, "notes-only", opts.NotesOnly, "ノートイベントのみ出力")
	fs.IntVar(program, "program", 0, "プログラムチェンジ前の音色番号（0-127）")
	fs.BoolVar(&opts.MergeTracks, "merge", opts.MergeTracks, "全トラックを1本にマージ")
	fs.BoolVar(&opts.ConvertToRealTime, "realtime", opts.ConvertToRealTime, "時間をマイクロ秒に変換")
	fs.BoolVar(&opts.ComputeDurations, "durations", opts.ComputeDurations, "ノートの長さを計算")
	fs.BoolVar(&opts.RemoveNoteOff, "remove-note-off", opts.RemoveNoteOff, "ノートオフを削除")
	fs.StringVar(&config.OutDir, "out", "", "出力ディレクトリ")
	fs.StringVar(&config.OutDir, "o", "", "出力ディレクトリ（短縮形）")
	fs.BoolVar(&config.Check, "check", false, "解析のみ行う")
	fs.IntVar(&config.Jobs, "jobs", 0, "並列数（0はCPU数）")
	fs.IntVar(&config.Jobs, "j", 0, "並列数（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.LogFormat, "log-format", "text", "ログ形式（text, json）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")
	return fs
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
// 値を取るフラグは次の引数も一緒に移動する
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -name=value の形式なら値は含まれている
			name := strings.TrimLeft(arg, "-")
			if strings.Contains(name, "=") {
				continue
			}
			// ブール型フラグでない場合は次の引数も追加
			if i+1 < len(args) && !isBoolFlag(fs, name) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を "--" の後ろに配置
	if len(positional) == 0 {
		return flags
	}
	return append(append(flags, "--"), positional...)
}

// isBoolFlag flagパッケージと同じくIsBoolFlagで判定する
func isBoolFlag(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `densemidi - Standard MIDI File decoder

Usage:
  densemidi [options] <file-or-directory>...

Arguments:
  file-or-directory   SMFファイル、またはSMFファイルを含むディレクトリ
                      ディレクトリは再帰的に .mid .midi .smf .kar を探す
                      ファイル名の大文字小文字は区別しない

Options:
  --notes-only=<bool>         ノートイベントのみ出力（デフォルト: true）
  --program <n>               プログラムチェンジ前の音色番号（デフォルト: 0）
  --merge=<bool>              全トラックを1本にマージ（デフォルト: true）
  --realtime=<bool>           時間をマイクロ秒に変換（デフォルト: true）
  --durations                 ノートオンに長さを付ける
  --remove-note-off           ノートオフを削除（--durations と併用）
  -o, --out <dir>             出力ディレクトリ（デフォルト: out）
  --check                     解析のみ行い、失敗したファイルとエラーを表示
  -j, --jobs <n>              並列数（デフォルト: CPU数）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --log-format <format>       ログ形式: text, json（デフォルト: text）
  -h, --help                  このヘルプを表示

Environment Variables:
  LOG_LEVEL=<level>           ログレベル
  DENSEMIDI_JOBS=<n>          並列数
  DENSEMIDI_OUT=<dir>         出力ディレクトリ

Examples:
  densemidi song.mid                       out/song/ に書き出す
  densemidi -o dataset midi/               ディレクトリ内のSMFをすべて変換
  densemidi --durations --remove-note-off song.mid
  densemidi --merge=false --realtime=false song.mid  トラック別・tick単位で出力
  densemidi --check midi/                  壊れたファイルを探す
`)
}
