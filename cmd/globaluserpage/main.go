// Package main provides the CLI entry point for globaluserpage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"

	"github.com/wikimedia/globaluserpage/internal/config"
	"github.com/wikimedia/globaluserpage/internal/eligibility"
	"github.com/wikimedia/globaluserpage/internal/invalidate"
	"github.com/wikimedia/globaluserpage/internal/remote"
	"github.com/wikimedia/globaluserpage/internal/render"
	"github.com/wikimedia/globaluserpage/pkg/cache"
	"github.com/wikimedia/globaluserpage/pkg/database"
	"github.com/wikimedia/globaluserpage/pkg/queue"
	"github.com/wikimedia/globaluserpage/pkg/title"
)

// CLI structure
var CLI struct {
	Config string `help:"Configuration file path" default:"config.yaml"`
	Debug  bool   `help:"Enable debug logging" default:"false"`

	Check struct {
		Title string `arg:"" help:"Prefixed title, e.g. 'User:Alice'."`
	} `cmd:"" help:"Decide whether a missing title would display a global user page."`

	Render struct {
		Username string `arg:"" help:"Username owning the page."`
		Lang     string `help:"Viewer language code" default:"en"`
		Skin     string `help:"Viewer skin" default:"vector"`
	} `cmd:"" help:"Fetch (or serve from cache) the rendered central user page."`

	Invalidate struct {
		Username string `arg:"" help:"Username whose page changed."`
		Links    bool   `help:"Also touch backlinks (the page was created or deleted)."`
	} `cmd:"" help:"Fan an invalidation out to every participant wiki."`

	Worker struct{} `cmd:"" help:"Run invalidation job workers for all configured wikis."`
}

// services bundles the wired-up components.
type services struct {
	cfg         *config.Config
	manager     *eligibility.Manager
	client      *remote.Client
	store       cache.Store
	renderCache *render.Cache
	group       *queue.MemoryGroup
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Configuration(kongyaml.Loader, "config.yaml", "~/.globaluserpage/config.yaml"),
	)

	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelWarn)
	}

	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	svc, err := buildServices(cfg)
	if err != nil {
		slog.Error("Failed to initialize services", "error", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "check <title>":
		runCheck(svc)
	case "render <username>":
		runRender(svc)
	case "invalidate <username>":
		runInvalidate(svc)
	case "worker":
		runWorker(svc)
	default:
		panic(ctx.Command())
	}
}

func buildServices(cfg *config.Config) (*services, error) {
	centralDB, err := database.Open(cfg.CentralDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open central replica: %w", err)
	}

	cacheDB, err := database.Open(cfg.CacheDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	store, err := cache.NewSQLiteStore(cacheDB, "globaluserpage_cache")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache store: %w", err)
	}

	lookup := eligibility.NewDBCentralLookup(centralDB.DB())
	manager, err := eligibility.NewManager(centralDB.DB(), lookup, cfg.WikiID, cfg.CentralWiki)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize eligibility manager: %w", err)
	}

	return &services{
		cfg:         cfg,
		manager:     manager,
		client:      remote.NewClient(cfg.APIURL, cfg.APITimeout),
		store:       store,
		renderCache: render.NewCache(store, cfg.CacheExpiry),
		group:       queue.NewMemoryGroup(),
	}, nil
}

func runCheck(svc *services) {
	t := title.Parse(CLI.Check.Title)
	if svc.manager.ShouldDisplayGlobalPage(t) {
		fmt.Printf("%s: global user page would be displayed\n", t.PrefixedText())
		return
	}
	fmt.Printf("%s: no global user page\n", t.PrefixedText())
}

func runRender(svc *services) {
	username := title.NormalizeUsername(CLI.Render.Username)
	if username == "" {
		slog.Error("Invalid username", "username", CLI.Render.Username)
		os.Exit(1)
	}

	touched := svc.manager.CentralTouched(username)
	if touched == "" {
		fmt.Printf("%s has no central user page (or opted out)\n", username)
		os.Exit(1)
	}

	ctx := context.Background()
	page := remote.NewUserPage(svc.client, svc.store, username, svc.cfg.CentralWiki, svc.cfg.WikiURLs)
	parsed := svc.renderCache.RemoteParsedText(ctx, page, touched, CLI.Render.Lang, CLI.Render.Skin)
	if parsed == nil {
		fmt.Printf("no global content available for %s\n", username)
		os.Exit(1)
	}

	view := render.Compose(parsed, page.SourceURL(ctx), page.WikiDisplayName(ctx),
		svc.cfg.FooterMessage, render.NewStaticModuleRegistry())

	encoded, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		slog.Error("Failed to encode page view", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
}

func runInvalidate(svc *services) {
	ctx := context.Background()
	inv := invalidate.NewInvalidator(svc.group, svc.cfg.WikiID, svc.cfg.UseCDNCache, svc.cfg.UseFileCache)

	opts := invalidate.Options{Links: CLI.Invalidate.Links}
	if err := inv.Invalidate(ctx, CLI.Invalidate.Username, opts); err != nil {
		slog.Error("Failed to submit invalidation", "error", err)
		os.Exit(1)
	}

	// The in-memory queue lives and dies with this process, so drain the
	// fan-out inline. Deployments with a real queue transport run the
	// worker command instead.
	// Stage 1 lands on this wiki's queue first, so draining it before the
	// participant queues executes the whole fan-out.
	runner := newRunner(svc)
	for _, wiki := range append([]string{svc.cfg.WikiID}, svc.cfg.Wikis...) {
		q := svc.group.MemoryQueue(wiki)
		for drained := false; !drained; {
			select {
			case job := <-q.Receive():
				if err := runner.Run(ctx, job); err != nil {
					slog.Error("Job failed", "wiki", wiki, "error", err)
				}
			default:
				drained = true
			}
		}
	}
}

func runWorker(svc *services) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := newRunner(svc)
	var wg sync.WaitGroup
	for _, wiki := range append([]string{svc.cfg.WikiID}, svc.cfg.Wikis...) {
		worker := invalidate.NewWorker(wiki, svc.group.MemoryQueue(wiki), runner)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Worker stopped", "error", err)
			}
		}()
	}
	wg.Wait()
}

func newRunner(svc *services) *invalidate.Runner {
	return invalidate.NewRunner(
		svc.group,
		invalidate.StaticWikiList(svc.cfg.Wikis),
		logPurger{},
		logFileCache{},
		logToucher{},
	)
}

// The CDN, file cache and links-table layers are external collaborators;
// the CLI stands in for them by logging what would be purged.

type logPurger struct{}

func (logPurger) PurgeTitle(ctx context.Context, t title.Title) error {
	slog.Info("Purging CDN URLs", "title", t.PrefixedText())
	return nil
}

type logFileCache struct{}

func (logFileCache) Clear(ctx context.Context, t title.Title) error {
	slog.Info("Clearing file cache", "title", t.PrefixedText())
	return nil
}

type logToucher struct{}

func (logToucher) TouchBacklinks(ctx context.Context, t title.Title) error {
	slog.Info("Touching backlinks", "title", t.PrefixedText())
	return nil
}
