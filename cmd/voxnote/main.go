package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxnote/voxnote/internal/api"
	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/notify"
	"github.com/voxnote/voxnote/internal/recorder"
	"github.com/voxnote/voxnote/internal/settings"
	"github.com/voxnote/voxnote/internal/transcribe"
	"github.com/voxnote/voxnote/internal/transcript"
	"github.com/voxnote/voxnote/internal/watcher"
)

var version = "dev"

const usage = `voxnote - voice recorder with automatic transcription

Usage:
  voxnote [record] [flags]     record from the microphone until Enter or Ctrl-C
  voxnote transcribe <file>    transcribe an existing WAV file
  voxnote watch [flags]        transcribe new WAV files dropped into the recordings directory
  voxnote set-key [key]        store the transcription API key
  voxnote version              print the version

Flags:
  -dir <path>        data directory (default ~/.voxnote)
  -env-file <path>   env file to load (default .env)
  -http <addr>       serve status endpoints on this address
  -language <code>   transcription language hint (e.g. en)
  -log-level <lvl>   trace, debug, info, warn, error (default info)
`

func main() {
	args := os.Args[1:]
	cmd := "record"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "version":
		fmt.Println("voxnote " + version)
		return
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "record", "transcribe", "watch", "set-key":
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	fs := flag.NewFlagSet("voxnote "+cmd, flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	dir := fs.String("dir", "", "data directory")
	envFile := fs.String("env-file", "", "env file to load")
	httpAddr := fs.String("http", "", "status server address")
	language := fs.String("language", "", "transcription language hint")
	logLevel := fs.String("log-level", "", "log level")
	fs.Parse(args)

	cfg, err := config.Load(config.Overrides{
		EnvFile:  *envFile,
		BaseDir:  *dir,
		HTTPAddr: *httpAddr,
		LogLevel: *logLevel,
		Language: *language,
	})
	if err != nil {
		early := zerolog.New(os.Stderr).With().Timestamp().Logger()
		early.Fatal().Err(err).Msg("failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := settings.NewStore(cfg.SettingsPath())
	session := recorder.New(cfg, store, log)

	switch cmd {
	case "record":
		err = runRecord(ctx, cfg, store, session, log)
	case "transcribe":
		if fs.NArg() < 1 {
			fmt.Fprintf(os.Stderr, "usage: voxnote transcribe <file.wav>\n")
			os.Exit(2)
		}
		err = runTranscribe(ctx, cfg, session, log, fs.Arg(0))
	case "watch":
		err = runWatch(ctx, cfg, store, session, log)
	case "set-key":
		err = runSetKey(cfg, store, fs.Arg(0))
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

// startStatusServer starts the optional HTTP status server and returns a
// shutdown func. No-op when no address is configured.
func startStatusServer(cfg *config.Config, session *recorder.Session, w *watcher.Watcher, store *settings.Store, log zerolog.Logger) func() {
	if cfg.HTTPAddr == "" {
		return func() {}
	}
	srv := api.NewServer(cfg, session, w, store, version, time.Now(), log.With().Str("component", "http").Logger())
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http server shutdown error")
		}
	}
}

func buildObserver(cfg *config.Config, log zerolog.Logger) transcribe.Observer {
	obs := transcribe.Observers{newConsole()}
	if cfg.Notify {
		obs = append(obs, notify.NewDesktop(log))
	}
	return obs
}

func runRecord(ctx context.Context, cfg *config.Config, store *settings.Store, session *recorder.Session, log zerolog.Logger) error {
	if store.APIKey() == "" {
		fmt.Fprintln(os.Stderr, "note: no API key configured, audio will be saved without a transcript (voxnote set-key)")
	}

	stopHTTP := startStatusServer(cfg, session, nil, store, log)
	defer stopHTTP()

	if err := session.Start(); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Recording... press Enter to stop")
	session.NotifyElapsed(ctx, time.Second, func(d time.Duration) {
		fmt.Fprintf(os.Stderr, "\rRecording %s ", transcript.FormatDuration(d))
	})

	enter := make(chan struct{})
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		close(enter)
	}()
	select {
	case <-enter:
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr)
	}

	// Save and transcribe on a fresh context so Ctrl-C during recording
	// still produces a saved asset. A second Ctrl-C kills the process.
	saveCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := session.StopAndSave(saveCtx, buildObserver(cfg, log))
	if err != nil {
		return err
	}
	report(res)
	return nil
}

func runTranscribe(ctx context.Context, cfg *config.Config, session *recorder.Session, log zerolog.Logger, path string) error {
	res, err := session.TranscribeFile(ctx, path, buildObserver(cfg, log))
	if err != nil {
		return err
	}
	report(res)
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config, store *settings.Store, session *recorder.Session, log zerolog.Logger) error {
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	obs := buildObserver(cfg, log)
	w := watcher.New(cfg.RecordingsDir(), func(path string) {
		res, err := session.TranscribeFile(ctx, path, obs)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to transcribe watched file")
			return
		}
		report(res)
	}, log)

	stopHTTP := startStatusServer(cfg, session, w, store, log)
	defer stopHTTP()

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Fprintf(os.Stderr, "Watching %s for new recordings, Ctrl-C to stop\n", cfg.RecordingsDir())
	<-ctx.Done()
	return nil
}

func runSetKey(cfg *config.Config, store *settings.Store, key string) error {
	if key == "" {
		fmt.Fprint(os.Stderr, "Enter API key: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read key: %w", err)
		}
		key = strings.TrimSpace(line)
	}
	if key == "" {
		return fmt.Errorf("empty API key")
	}
	if err := store.SetAPIKey(key); err != nil {
		return err
	}
	fmt.Printf("API key saved to %s\n", cfg.SettingsPath())
	return nil
}

func report(res recorder.SaveResult) {
	switch {
	case res.NoAudio:
		fmt.Println("No audio recorded, nothing saved")
	case res.Skipped:
		fmt.Printf("Audio saved: %s (no transcript)\n", res.AudioPath)
	default:
		fmt.Printf("Audio saved:      %s\n", res.AudioPath)
		fmt.Printf("Transcript saved: %s\n", res.TranscriptPath)
	}
}
