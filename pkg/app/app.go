package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/zurustar/densemidi/pkg/cli"
	"github.com/zurustar/densemidi/pkg/export"
	"github.com/zurustar/densemidi/pkg/fileutil"
	"github.com/zurustar/densemidi/pkg/logger"
	"github.com/zurustar/densemidi/pkg/smf"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrFilesFailed 1つ以上のファイルの処理に失敗した
var ErrFilesFailed = errors.New("some files failed")

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	stdout io.Writer
	// printer は集計値を桁区切りで整形する
	printer *message.Printer
}

// Stats は処理結果の集計
type Stats struct {
	Files  int
	Failed int
	Tracks int64
	Events int64
}

// New Applicationを作成
func New() *Application {
	return &Application{
		stdout:  os.Stdout,
		printer: message.NewPrinter(language.English),
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 3. 入力ファイルの列挙
	inputs, err := fileutil.CollectInputs(app.config.Inputs)
	if err != nil {
		return fmt.Errorf("failed to collect inputs: %w", err)
	}
	if len(inputs) == 0 {
		app.log.Warn("No MIDI files found", "inputs", app.config.Inputs)
		return nil
	}
	app.log.Info("Inputs collected", "files", len(inputs), "jobs", app.config.Jobs, "check", app.config.Check)

	// 4. 並列にデコード
	start := time.Now()
	stats, errs := app.processAll(inputs)

	// 5. 集計
	app.log.Info("Finished",
		"summary", app.Summary(stats),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d of %d: %w", ErrFilesFailed, stats.Failed, stats.Files, errors.Join(errs...))
	}
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel, app.config.LogFormat); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// processAll 全ファイルをjobs並列で処理する
// 1ファイルの失敗で他のファイルは中断しない
func (app *Application) processAll(inputs []fileutil.Input) (Stats, []error) {
	errs := make([]error, len(inputs))
	var tracks, events atomic.Int64

	var g errgroup.Group
	g.SetLimit(app.config.Jobs)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			f, err := app.process(in)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", in.Path, err)
				return nil
			}
			tracks.Add(int64(len(f.Tracks)))
			events.Add(int64(f.EventCount()))
			return nil
		})
	}
	g.Wait()

	stats := Stats{Files: len(inputs), Tracks: tracks.Load(), Events: events.Load()}
	var failed []error
	for _, err := range errs {
		if err == nil {
			continue
		}
		failed = append(failed, err)
		// checkモードでは失敗したファイルとエラーを標準出力に表示
		if app.config.Check {
			fmt.Fprintln(app.stdout, err)
		} else {
			app.log.Error("Failed to decode", "error", err)
		}
	}
	stats.Failed = len(failed)
	return stats, failed
}

// process 1ファイルを読み込み、変換して書き出す
func (app *Application) process(in fileutil.Input) (*smf.File, error) {
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, err
	}

	f, err := smf.Load(data, app.config.Options)
	if err != nil {
		return nil, err
	}
	app.log.Debug("Decoded",
		"file", in.Path,
		"format", f.Format,
		"tracks", len(f.Tracks),
		"events", f.EventCount(),
		"tempos", len(f.Tempos),
		"unit", f.Unit())

	if app.config.Check {
		return f, nil
	}

	dir := filepath.Join(app.config.OutDir, filepath.FromSlash(in.Name))
	if _, err := export.WriteBundle(dir, in.Path, f); err != nil {
		return nil, err
	}
	app.log.Debug("Bundle written", "file", in.Path, "dir", dir)
	return f, nil
}

// Summary 集計結果を桁区切り付きの1行にする
func (app *Application) Summary(s Stats) string {
	return app.printer.Sprintf("%d files (%d failed), %d tracks, %d events",
		s.Files, s.Failed, s.Tracks, s.Events)
}
