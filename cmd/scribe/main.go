package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scribe-tui/scribe/internal/app"
	"github.com/scribe-tui/scribe/internal/blogapi"
	"github.com/scribe-tui/scribe/internal/config"
	"github.com/scribe-tui/scribe/internal/session"
	"github.com/scribe-tui/scribe/internal/storage"
	"github.com/scribe-tui/scribe/internal/tui"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}
	if err := repo.CheckWritable(ctx); err != nil {
		log.Fatalf("storage write check failed (%v). Verify SCRIBE_DB_PATH is writable: %s", err, cfg.DBPath)
	}

	sess := session.New(repo)
	if err := sess.Init(ctx); err != nil {
		log.Fatalf("cannot restore session: %v", err)
	}

	client := blogapi.NewClient(cfg.APIBaseURL, sess, nil)
	service := app.NewService(client, repo, sess)

	cacheLoadStart := time.Now()
	posts, err := service.ListCached(ctx)
	if err != nil {
		log.Fatalf("cannot load cached posts: %v", err)
	}
	cacheLoadDuration := time.Since(cacheLoadStart)

	model := tui.NewModel(service, posts, service.Viewer())
	model.SetStartupCacheStats(cacheLoadDuration, len(posts))

	prefCtx, prefCancel := context.WithTimeout(context.Background(), 5*time.Second)
	prefs, err := service.LoadUIPreferences(prefCtx)
	prefCancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load UI preferences (%v), using defaults\n", err)
	} else {
		model.ApplyPreferences(tui.Preferences{
			Compact:      prefs.Compact,
			RelativeTime: prefs.RelativeTime,
			ShowNumbers:  prefs.ShowNumbers,
		})
	}

	model.SetPreferencesSaver(func(p tui.Preferences) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SaveUIPreferences(saveCtx, storage.UIPreferences{
			Compact:      p.Compact,
			RelativeTime: p.RelativeTime,
			ShowNumbers:  p.ShowNumbers,
		})
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
