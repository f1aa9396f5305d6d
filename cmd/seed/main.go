package main

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/internal/catalog"
	"github.com/thescentlab/scentlab-backend/internal/users"
	"github.com/thescentlab/scentlab-backend/pkg/config"
	"github.com/thescentlab/scentlab-backend/pkg/db"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
	"github.com/thescentlab/scentlab-backend/pkg/security"
)

// seed populates a fresh environment with an admin account and a starter
// catalog. Safe to re-run: it skips work that is already done.
func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})

	dbClient, err := db.NewClient(cfg.DB)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := seedAdmin(ctx, cfg, logg, users.NewRepository(dbClient.Gorm())); err != nil {
		logg.Error(ctx, "failed to seed admin user", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.Gorm()), dbClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}
	if err := seedCatalog(ctx, logg, catalogService); err != nil {
		logg.Error(ctx, "failed to seed catalog", err)
		os.Exit(1)
	}

	logg.Info(ctx, "seed complete")
}

func seedAdmin(ctx context.Context, cfg *config.Config, logg *logger.Logger, repo *users.Repository) error {
	email := strings.ToLower(strings.TrimSpace(os.Getenv("SCENTLAB_SEED_ADMIN_EMAIL")))
	password := os.Getenv("SCENTLAB_SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		logg.Warn(ctx, "SCENTLAB_SEED_ADMIN_EMAIL or SCENTLAB_SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	if _, err := repo.FindByEmail(ctx, email); err == nil {
		logg.Info(ctx, "admin user already present")
		return nil
	} else if !db.IsNotFound(err) {
		return err
	}

	hash, err := security.HashPassword(password, cfg.Password)
	if err != nil {
		return err
	}

	admin := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Administrator",
		Role:         enums.UserRoleAdmin,
		Preferences:  models.DefaultScentProfile(),
		IsActive:     true,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return err
	}
	logg.Info(ctx, "admin user created")
	return nil
}

func seedCatalog(ctx context.Context, logg *logger.Logger, svc catalog.Service) error {
	page, err := svc.List(ctx, catalog.ListInput{Pagination: pagination.Params{Limit: 1}})
	if err != nil {
		return err
	}
	if len(page.Items) > 0 {
		logg.Info(ctx, "catalog already seeded")
		return nil
	}

	for _, input := range starterCatalog() {
		if _, err := svc.Create(ctx, input); err != nil {
			return err
		}
	}
	logg.Info(ctx, "starter catalog created")
	return nil
}

func starterCatalog() []catalog.CreateFragranceInput {
	year := func(y int) *int { return &y }
	desc := func(s string) *string { return &s }

	return []catalog.CreateFragranceInput{
		{
			Name:        "Aventus",
			Brand:       "Creed",
			Description: desc("Smoky pineapple and birch over a musky amber base."),
			BottlePrice: decimal.NewFromFloat(435),
			PerMlPrice:  decimal.NewFromFloat(4.35),
			Profile: models.ScentProfile{
				Citrus: 55, Floral: 15, Woody: 70, Spicy: 30,
				Fresh: 60, Musky: 65, Sweet: 45, Oriental: 25,
			},
			TopNotes:      []string{"pineapple", "bergamot", "black currant", "apple"},
			MiddleNotes:   []string{"birch", "patchouli", "moroccan jasmine", "rose"},
			BaseNotes:     []string{"musk", "oakmoss", "ambergris", "vanilla"},
			Gender:        enums.GenderMasculine,
			Concentration: enums.ConcentrationEauDeParfum,
			ReleaseYear:   year(2010),
			SealedBottles: 3,
			BottleSizeMl:  100,
			OpenDecantMl:  50,
		},
		{
			Name:        "Baccarat Rouge 540",
			Brand:       "Maison Francis Kurkdjian",
			Description: desc("Saffron and jasmine over a sweet ambery woodiness."),
			BottlePrice: decimal.NewFromFloat(325),
			PerMlPrice:  decimal.NewFromFloat(4.65),
			Profile: models.ScentProfile{
				Citrus: 10, Floral: 55, Woody: 50, Spicy: 40,
				Fresh: 20, Musky: 30, Sweet: 85, Oriental: 75,
			},
			TopNotes:      []string{"saffron", "jasmine"},
			MiddleNotes:   []string{"amberwood", "ambergris"},
			BaseNotes:     []string{"fir resin", "cedar"},
			Gender:        enums.GenderUnisex,
			Concentration: enums.ConcentrationEauDeParfum,
			ReleaseYear:   year(2015),
			SealedBottles: 2,
			BottleSizeMl:  70,
			OpenDecantMl:  35,
		},
		{
			Name:        "Light Blue",
			Brand:       "Dolce & Gabbana",
			Description: desc("Sicilian lemon and apple with a clean cedar drydown."),
			BottlePrice: decimal.NewFromFloat(98),
			PerMlPrice:  decimal.NewFromFloat(1.10),
			Profile: models.ScentProfile{
				Citrus: 90, Floral: 35, Woody: 30, Spicy: 5,
				Fresh: 95, Musky: 25, Sweet: 20, Oriental: 5,
			},
			TopNotes:      []string{"sicilian lemon", "apple", "cedar", "bellflower"},
			MiddleNotes:   []string{"bamboo", "jasmine", "white rose"},
			BaseNotes:     []string{"cedar", "musk", "amber"},
			Gender:        enums.GenderFeminine,
			Concentration: enums.ConcentrationEauDeToilette,
			ReleaseYear:   year(2001),
			SealedBottles: 5,
			BottleSizeMl:  100,
			OpenDecantMl:  0,
		},
		{
			Name:        "Oud Wood",
			Brand:       "Tom Ford",
			Description: desc("Rare oud smoothed with sandalwood and tonka."),
			BottlePrice: decimal.NewFromFloat(250),
			PerMlPrice:  decimal.NewFromFloat(5.00),
			Profile: models.ScentProfile{
				Citrus: 5, Floral: 10, Woody: 95, Spicy: 55,
				Fresh: 15, Musky: 40, Sweet: 35, Oriental: 80,
			},
			TopNotes:      []string{"oud", "rosewood", "cardamom"},
			MiddleNotes:   []string{"sandalwood", "sichuan pepper"},
			BaseNotes:     []string{"tonka bean", "vanilla", "amber"},
			Gender:        enums.GenderUnisex,
			Concentration: enums.ConcentrationEauDeParfum,
			ReleaseYear:   year(2007),
			SealedBottles: 2,
			BottleSizeMl:  50,
			OpenDecantMl:  25,
		},
		{
			Name:        "La Vie Est Belle",
			Brand:       "Lancome",
			Description: desc("Iris gourmand with praline and blackcurrant."),
			BottlePrice: decimal.NewFromFloat(112),
			PerMlPrice:  decimal.NewFromFloat(1.50),
			Profile: models.ScentProfile{
				Citrus: 15, Floral: 80, Woody: 25, Spicy: 10,
				Fresh: 30, Musky: 35, Sweet: 90, Oriental: 45,
			},
			TopNotes:      []string{"black currant", "pear"},
			MiddleNotes:   []string{"iris", "jasmine", "orange blossom"},
			BaseNotes:     []string{"praline", "vanilla", "patchouli", "tonka bean"},
			Gender:        enums.GenderFeminine,
			Concentration: enums.ConcentrationEauDeParfum,
			ReleaseYear:   year(2012),
			SealedBottles: 4,
			BottleSizeMl:  75,
			OpenDecantMl:  30,
		},
	}
}
