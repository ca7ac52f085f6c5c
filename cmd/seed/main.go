// Command seed loads rooms and the menu from a YAML file into MySQL and can
// create the first back-office account.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/iliyamo/hotel-room-service/internal/config"
	"github.com/iliyamo/hotel-room-service/internal/database"
	"github.com/iliyamo/hotel-room-service/internal/model"
	"github.com/iliyamo/hotel-room-service/internal/repository"
)

func main() {
	path := flag.String("file", "configs/catalog.yaml", "catalog seed file")
	adminEmail := flag.String("admin-email", "", "create an ADMIN account with this email")
	adminPassword := flag.String("admin-password", "", "password for --admin-email")
	flag.Parse()

	cfg := config.Load()
	logger := config.NewLogger(cfg.Env, cfg.LogLevel)

	seed, err := config.LoadCatalogSeed(*path)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *path).Msg("seed file rejected")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}

	rooms := repository.NewRoomRepo(db)
	for _, r := range seed.Rooms {
		room := model.Room{RoomNumber: strings.TrimSpace(r.Number), Floor: r.Floor, IsActive: config.Active(r.IsActive)}
		if err := rooms.Upsert(ctx, &room); err != nil {
			logger.Fatal().Err(err).Str("room", room.RoomNumber).Msg("room upsert failed")
		}
	}

	menu := repository.NewMenuRepo(db)
	var items int
	for ci, c := range seed.Categories {
		cat := model.MenuCategory{
			Name:      strings.TrimSpace(c.Name),
			SortOrder: ci,
			Window:    c.Window,
			IsActive:  config.Active(c.IsActive),
		}
		if err := menu.UpsertCategory(ctx, &cat); err != nil {
			logger.Fatal().Err(err).Str("category", cat.Name).Msg("category upsert failed")
		}
		for ii, it := range c.Items {
			item := model.MenuItem{
				CategoryID:  cat.ID,
				Name:        strings.TrimSpace(it.Name),
				Description: strings.TrimSpace(it.Description),
				Price:       it.Price.Round(2),
				Window:      it.Window,
				IsActive:    config.Active(it.IsActive),
				SortOrder:   ii,
			}
			if err := menu.UpsertItem(ctx, &item); err != nil {
				logger.Fatal().Err(err).Str("item", item.Name).Msg("item upsert failed")
			}
			items++
		}
	}
	logger.Info().Int("rooms", len(seed.Rooms)).Int("categories", len(seed.Categories)).Int("items", items).Msg("catalog seeded")

	if *adminEmail == "" {
		return
	}
	if *adminPassword == "" {
		logger.Error().Msg("--admin-password is required with --admin-email")
		os.Exit(2)
	}
	id, err := repository.NewStaffRepo(db).Create(ctx, *adminEmail, *adminPassword, model.RoleAdmin, cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		logger.Info().Str("email", *adminEmail).Msg("admin account already exists")
	case err != nil:
		logger.Fatal().Err(err).Msg("admin account not created")
	default:
		logger.Info().Uint64("id", id).Msg("admin account created")
	}
}
