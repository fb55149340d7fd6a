// Recipebook serves a recipe search and bookmarking page.
//
// Usage:
//
//	recipebook [-verbose] [-quiet] [-offline] [-addr :8080]
//	recipebook -session <id> -list
//	recipebook -session <id> -export bookmarks.xlsx
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/hammamikhairi/recipebook/internal/api"
	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/export"
	"github.com/hammamikhairi/recipebook/internal/logger"
	"github.com/hammamikhairi/recipebook/internal/recipe"
	"github.com/hammamikhairi/recipebook/internal/state"
	"github.com/hammamikhairi/recipebook/internal/storage"
	"github.com/hammamikhairi/recipebook/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "stderr", "file to write logs to (use \"stderr\" to log to console)")
	offline := flag.Bool("offline", false, "serve the built-in recipes instead of calling the recipe API")
	addr := flag.String("addr", cfg.Addr, "address to listen on")
	storeKind := flag.String("store", cfg.Store, "bookmark storage: memory, file or sqlite")
	storePath := flag.String("store-path", cfg.StorePath, "path of the file or sqlite store")
	session := flag.String("session", "", "session id whose bookmarks -list and -export read")
	list := flag.Bool("list", false, "print the session's bookmarks and exit")
	exportPath := flag.String("export", "", "write the session's bookmarks to an xlsx file and exit")
	flag.Parse()

	cfg.Addr = *addr
	cfg.Store = *storeKind
	cfg.StorePath = *storePath
	if *verbose {
		cfg.LogLevel = logger.LevelVerbose
	}
	if *quiet {
		cfg.LogLevel = logger.LevelOff
	}

	printer := display.NewPrinter(os.Stdout, 0)
	if err := cfg.Validate(); err != nil {
		printer.Error("%v", err)
		os.Exit(2)
	}

	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// chi's middleware and net/http report through the standard logger.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(cfg.LogLevel, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		printer.Error("%v", err)
		os.Exit(1)
	}
	defer closeStore()

	if *list || *exportPath != "" {
		if err := offlineCommand(ctx, kv, log, printer, *session, *list, *exportPath); err != nil {
			printer.Error("%v", err)
			os.Exit(1)
		}
		return
	}

	recipes, source, err := recipeSource(cfg, *offline, log)
	if err != nil {
		printer.Error("%v", err)
		os.Exit(1)
	}

	sessions := web.NewSessions(recipes, kv, log.With("web"),
		web.WithStateOptions(state.WithResultsPerPage(cfg.ResultsPerPage)),
	)
	srv := web.NewServer(sessions, log.With("http"))

	printer.Startup(cfg.Addr, source, cfg.Store)
	log.Info("recipebook starting (api=%s, store=%s)", source, cfg.Store)

	if err := web.ListenAndServe(ctx, cfg.Addr, srv, log); err != nil {
		log.Error("server: %v", err)
		printer.Error("server: %v", err)
		os.Exit(1)
	}
	log.Info("recipebook stopped")
}

// recipeSource picks the recipe API. Offline mode, or a missing API key,
// falls back to the built-in recipes.
func recipeSource(cfg config.Config, offline bool, log *logger.Logger) (domain.RecipeAPI, string, error) {
	if !offline && cfg.APIKey == "" {
		log.Warn("%s not set, serving built-in recipes", config.EnvAPIKey)
		offline = true
	}
	if offline {
		return recipe.NewMemorySource(log.With("recipes")), "built-in", nil
	}

	client := api.NewClient(log.With("api"), api.WithTimeout(cfg.Timeout))
	rc, err := api.NewRecipeClient(client, cfg.APIURL, cfg.APIKey, log.With("recipes"))
	if err != nil {
		return nil, "", err
	}
	return rc, cfg.APIURL, nil
}

func openStore(ctx context.Context, cfg config.Config, log *logger.Logger) (domain.KeyValueStore, func(), error) {
	log = log.With("storage")
	noop := func() {}

	switch cfg.Store {
	case config.StoreMemory:
		return storage.NewMemoryStore(log), noop, nil
	case config.StoreFile:
		if err := ensureDir(cfg.StorePath); err != nil {
			return nil, noop, err
		}
		fs, err := storage.OpenFileStore(cfg.StorePath, log)
		if err != nil {
			return nil, noop, err
		}
		return fs, noop, nil
	default:
		if err := ensureDir(cfg.StorePath); err != nil {
			return nil, noop, err
		}
		db, err := storage.OpenSQLiteStore(ctx, cfg.StorePath, log)
		if err != nil {
			return nil, noop, err
		}
		return db, func() {
			if err := db.Close(); err != nil {
				log.Error("close store: %v", err)
			}
		}, nil
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// offlineCommand handles -list and -export against one session's stored
// bookmarks without starting the server.
func offlineCommand(ctx context.Context, kv domain.KeyValueStore, log *logger.Logger, printer *display.Printer, session string, list bool, exportPath string) error {
	if session == "" {
		return fmt.Errorf("-session is required with -list and -export (it is the %s cookie)", web.CookieName)
	}
	store := state.New(recipe.NewMemorySource(log), kv, log, state.WithBookmarksKey(web.BookmarksKey(session)))
	if err := store.Init(ctx); err != nil {
		return err
	}
	bookmarks := store.Bookmarks()

	if list {
		printer.Bookmarks(bookmarks)
	}
	if exportPath != "" {
		if err := export.SaveBookmarks(exportPath, bookmarks); err != nil {
			return err
		}
		log.Info("exported %d bookmarks to %s", len(bookmarks), exportPath)
	}
	return nil
}
