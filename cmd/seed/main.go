package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"diarykeeper/internal/config"
	"diarykeeper/internal/domain/models"
	"diarykeeper/internal/domain/services"
	"diarykeeper/internal/repository/jsonfile"
	"diarykeeper/internal/service"

	"github.com/joho/godotenv"
)

type seedEntry struct {
	daysAgo int
	title   string
	content string
	trashed bool
}

func main() {
	// Parse command-line flags
	dataDir := flag.String("data", "", "Storage root (overrides DATA_DIR)")
	clearData := flag.Bool("clear-data", false, "Empty the diaries and trash, then exit")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	// SAFETY: Prevent destructive operations in production
	if cfg.IsProd() {
		log.Fatalf("🚫 BLOCKED: Cannot seed or clear data in production environment")
	}

	logger := config.NewLogger(os.Stdout, cfg.Environment)

	defaults, err := config.DefaultSettings()
	if err != nil {
		log.Fatalf("Failed to load default settings: %v", err)
	}

	store, err := jsonfile.NewStore(jsonfile.StoreConfig{
		Root:            cfg.DataDir,
		LockTimeout:     cfg.LockTimeout,
		DefaultSettings: defaults,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to open storage root: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	diaryService := service.NewDiaryService(jsonfile.NewDiaryRepository(store), store, time.Now, logger)

	if *clearData {
		log.Printf("🧹 Clearing diaries and trash in %s", store.Root())
		if err := clearAll(ctx, diaryService); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Println("✅ Data cleared successfully")
		return
	}

	log.Printf("🌱 Seeding diaries into %s", store.Root())

	entries := getSeedEntries()
	for i, e := range entries {
		entry, err := diaryService.SaveDiary(ctx, &models.SaveDiaryRequest{
			Date:    time.Now().AddDate(0, 0, -e.daysAgo).Format(models.DateLayout),
			Title:   e.title,
			Content: e.content,
		})
		if err != nil {
			log.Printf("❌ Failed to save '%s': %v", e.title, err)
			continue
		}

		if e.trashed {
			if err := diaryService.MoveToTrash(ctx, entry.ID); err != nil {
				log.Printf("❌ Failed to trash '%s': %v", e.title, err)
				continue
			}
		}

		log.Printf("✅ Saved entry %d/%d: %s (ID: %s, trashed: %t)", i+1, len(entries), entry.Title, entry.ID, e.trashed)
	}

	stats, err := diaryService.GetStatistics(ctx)
	if err != nil {
		log.Fatalf("Failed to read statistics: %v", err)
	}
	log.Printf("🎉 Seeding complete! total=%d monthly=%d trashed=%d", stats.Total, stats.Monthly, stats.Trashed)
}

// clearAll deletes every active entry, then empties the trash
func clearAll(ctx context.Context, diaries services.DiaryService) error {
	active, err := diaries.ListDiaries(ctx)
	if err != nil {
		return err
	}
	for _, entry := range active {
		if err := diaries.DeleteDiary(ctx, entry.ID); err != nil {
			return err
		}
	}
	return diaries.ClearTrash(ctx)
}

func getSeedEntries() []seedEntry {
	return []seedEntry{
		{
			daysAgo: 0,
			title:   "新的开始",
			content: "<p>今天开始写日记。</p>",
		},
		{
			daysAgo: 1,
			title:   "Morning walk",
			content: "<p>Walked along the river before work. The <strong>fog</strong> lifted around eight.</p>",
		},
		{
			daysAgo: 3,
			title:   "",
			content: "<p>Quick note without a title.</p>",
		},
		{
			daysAgo: 12,
			title:   "Reading list",
			content: "<ul><li>The Left Hand of Darkness</li><li>Piranesi</li></ul>",
		},
		{
			daysAgo: 40,
			title:   "Last month",
			content: "<p>An older entry from a few weeks back.</p>",
		},
		{
			daysAgo: 5,
			title:   "Draft to discard",
			content: "<p>This one goes straight to the trash.</p>",
			trashed: true,
		},
	}
}
