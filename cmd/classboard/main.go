package main

//go:generate templ generate -path ../../internal/views

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/classboard/internal/handler"
	"github.com/pavelanni/classboard/internal/homework"
	appI18n "github.com/pavelanni/classboard/internal/i18n"
	"github.com/pavelanni/classboard/internal/jobs"
	"github.com/pavelanni/classboard/internal/lesson"
	"github.com/pavelanni/classboard/internal/model"
	"github.com/pavelanni/classboard/internal/store"
	"github.com/pavelanni/classboard/internal/studio"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "classboard",
		Short: "Classroom analytics dashboard with a lesson studio and student center",
	}

	serve := serveCmd()
	root.AddCommand(serve, exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP dashboard",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", ":memory:", "SQLite database path")
	f.String("lesson", "", "Lesson bundle JSON file (empty = built-in lesson)")
	f.StringP("lang", "l", "zh", "Default UI language (zh, en)")
	f.String("base-path", "", "URL prefix for sub-path deployments (e.g. /class3)")
	f.Bool("secure-cookies", false, "Set Secure flag on cookies")
	f.Uint64("seed", 42, "Seed of the generated class")
	f.Int("class-size", 48, "Number of students in the generated class")
	f.Int("student-id", 8, "Roster id of the student shown in the student center")
	f.Duration("homework-interval", homework.DefaultInterval, "Delay between generated homework plans")
	f.Duration("parse-delay", studio.DefaultDelays.Parse, "Simulated knowledge parsing time")
	f.Duration("generate-delay", studio.DefaultDelays.Generate, "Simulated question generation time")
	f.Duration("preview-delay", handler.DefaultPreviewDelay, "Simulated preview photo upload time")
	f.Duration("post-delay", handler.DefaultPostDelay, "Simulated homework photo upload time")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the lesson report as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "classboard.db",
		"SQLite database written by serve --db; a new file is filled with a freshly generated class")
	f.String("lesson", "", "Lesson bundle JSON file (empty = built-in lesson)")
	f.Uint64("seed", 42, "Seed of the generated class")
	f.Int("class-size", 48, "Number of students in the generated class")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags, .env file and environment to a fresh
// viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("error reading .env file", "error", err)
	}

	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("CLASSBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("classboard")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/classboard")
	v.AddConfigPath("/etc/classboard")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	bundle, _, err := loadLesson(db, v.GetString("lesson"), v.GetUint64("seed"), v.GetInt("class-size"))
	if err != nil {
		return fmt.Errorf("load lesson: %w", err)
	}

	lang := v.GetString("lang")
	if err := appI18n.Init(lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	runner := jobs.NewRunner(ctx)
	defer runner.Close()

	svc := studio.New(db, bundle, runner, studio.Delays{
		Parse:    v.GetDuration("parse-delay"),
		Generate: v.GetDuration("generate-delay"),
	})
	gen := homework.NewGenerator(runner, db, v.GetDuration("homework-interval"))

	// Normalize base path.
	basePath := strings.TrimRight(v.GetString("base-path"), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}

	h, err := handler.New(db, bundle, svc, gen, runner, handler.Config{
		BasePath:      basePath,
		SecureCookies: v.GetBool("secure-cookies"),
		StudentID:     v.GetInt("student-id"),
		PreviewDelay:  v.GetDuration("preview-delay"),
		PostDelay:     v.GetDuration("post-delay"),
	})
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(appI18n.Middleware(basePath))

	if basePath != "" {
		r.Route(basePath, func(sub chi.Router) {
			sub.Use(h.BasePathMiddleware)
			h.Routes(sub)
		})
		r.Get(basePath, func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, basePath+"/", http.StatusMovedPermanently)
		})
	} else {
		r.Use(h.BasePathMiddleware)
		h.Routes(r)
	}

	addr := v.GetString("addr")
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	slog.Info("starting server",
		"addr", addr,
		"lesson", bundle.Lesson.Title,
		"lang", lang,
		"class_size", v.GetInt("class-size"),
		"seed", v.GetUint64("seed"),
		"base_path", basePath,
	)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	bundle, imported, err := loadLesson(db, v.GetString("lesson"), v.GetUint64("seed"), v.GetInt("class-size"))
	if err != nil {
		return fmt.Errorf("load lesson: %w", err)
	}
	if imported {
		slog.Warn("database had no lesson data, exporting a freshly generated class; "+
			"pass the file the server was started with via --db to export its edits",
			"db", v.GetString("db"))
	}

	report, err := db.ExportLessonReport(bundle)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

// loadLesson parses the lesson bundle and imports it into db unless the same
// content was imported before. imported reports whether this call did the
// import.
func loadLesson(db *store.Store, path string, seed uint64, size int) (bundle *model.Bundle, imported bool, err error) {
	key, data := lesson.DefaultName, lesson.Default()
	if path != "" {
		if data, err = os.ReadFile(path); err != nil {
			return nil, false, fmt.Errorf("read %s: %w", path, err)
		}
		key = path
	}

	bundle, err = lesson.Parse(data)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", key, err)
	}

	hash := sha256sum(data)
	storedHash, err := db.GetImportedFileHash(key)
	if err != nil {
		return nil, false, fmt.Errorf("check import status for %s: %w", key, err)
	}
	if storedHash == hash {
		slog.Info("lesson file unchanged, skipping import", "lesson", key)
		return bundle, false, nil
	}
	if storedHash != "" {
		slog.Warn("lesson file changed since last import, skipping to keep edited studio data",
			"lesson", key)
		return bundle, false, nil
	}

	if err := studio.Import(db, bundle, seed, size); err != nil {
		return nil, false, fmt.Errorf("import %s: %w", key, err)
	}
	if err := db.SetImportedFileHash(key, hash); err != nil {
		return nil, false, fmt.Errorf("record import for %s: %w", key, err)
	}
	slog.Info("imported lesson", "lesson", key, "title", bundle.Lesson.Title,
		"knowledge_points", len(bundle.KnowledgePoints), "students", size)
	return bundle, true, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
