package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/pkg/db"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog management and the read-only query paths.
type Service interface {
	Create(ctx context.Context, input CreateFragranceInput) (*FragranceDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*FragranceDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateFragranceInput) (*FragranceDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, input ListInput) (*pagination.Page[FragranceDTO], error)
	FilterByProfile(ctx context.Context, input ProfileFilterInput) ([]FragranceDTO, error)
	Recommend(ctx context.Context, input RecommendInput) ([]RecommendationDTO, error)
	Brands(ctx context.Context) ([]string, error)
	Notes(ctx context.Context) ([]string, error)
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateFragranceInput) (*FragranceDTO, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	fragrance := &models.Fragrance{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(input.Name),
		Brand:         strings.TrimSpace(input.Brand),
		Description:   input.Description,
		ImageURL:      input.ImageURL,
		BottlePrice:   input.BottlePrice,
		PerMlPrice:    input.PerMlPrice,
		Profile:       input.Profile,
		TopNotes:      pq.StringArray(NormalizeNotes(input.TopNotes)),
		MiddleNotes:   pq.StringArray(NormalizeNotes(input.MiddleNotes)),
		BaseNotes:     pq.StringArray(NormalizeNotes(input.BaseNotes)),
		Gender:        input.Gender,
		Concentration: input.Concentration,
		ReleaseYear:   input.ReleaseYear,
		IsActive:      true,
	}
	fragrance.Inventory = &models.Inventory{
		FragranceID:   fragrance.ID,
		SealedBottles: input.SealedBottles,
		BottleSizeMl:  input.BottleSizeMl,
		OpenDecantMl:  input.OpenDecantMl,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, fragrance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create fragrance")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithFragranceID(ctx, fragrance.ID.String())
	s.logg.Info(ctx, "fragrance created")

	dto := toFragranceDTO(*fragrance)
	return &dto, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*FragranceDTO, error) {
	fragrance, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		return nil, mapFindErr(err)
	}
	dto := toFragranceDTO(*fragrance)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateFragranceInput) (*FragranceDTO, error) {
	var updated *models.Fragrance
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fragrance, err := repo.FindActiveByID(ctx, id)
		if err != nil {
			return mapFindErr(err)
		}

		if err := applyUpdate(fragrance, input); err != nil {
			return err
		}
		if err := repo.Save(ctx, fragrance); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fragrance")
		}
		updated = fragrance
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toFragranceDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate fragrance")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "fragrance not found")
	}

	ctx = s.logg.WithFragranceID(ctx, id.String())
	s.logg.Info(ctx, "fragrance deactivated")
	return nil
}

func (s *service) List(ctx context.Context, input ListInput) (*pagination.Page[FragranceDTO], error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	if input.Filters.Gender != nil && !input.Filters.Gender.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid gender %q", *input.Filters.Gender))
	}
	if input.Filters.Concentration != nil && !input.Filters.Concentration.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid concentration %q", *input.Filters.Concentration))
	}

	rows, err := s.repo.ListActive(ctx, input.Filters, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fragrances")
	}

	page := pagination.BuildPage(toFragranceDTOs(rows), input.Pagination.Limit, func(dto FragranceDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: dto.CreatedAt, ID: dto.ID}
	})
	return &page, nil
}

func (s *service) FilterByProfile(ctx context.Context, input ProfileFilterInput) ([]FragranceDTO, error) {
	ranges := make(map[enums.Accord]ProfileRange, len(input.Ranges))
	for name, bounds := range input.Ranges {
		accord, err := enums.ParseAccord(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			// Unknown accord names are ignored rather than rejected.
			continue
		}
		if bounds.Min > bounds.Max {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("accord %q has min %d greater than max %d", accord, bounds.Min, bounds.Max))
		}
		ranges[accord] = bounds
	}

	rows, err := s.repo.FilterByProfile(ctx, ranges)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "filter by profile")
	}
	return toFragranceDTOs(rows), nil
}

func (s *service) Recommend(ctx context.Context, input RecommendInput) ([]RecommendationDTO, error) {
	notes := NormalizeNotes(input.Notes)
	if len(notes) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one note is required")
	}
	if input.Threshold < 0 || input.Threshold > 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "threshold must be between 0 and 1")
	}

	fragrances, err := s.repo.ListAllActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load catalog")
	}

	ranked := rankBySimilarity(noteSet(notes), fragrances, input.Threshold)
	out := make([]RecommendationDTO, 0, len(ranked))
	for _, match := range ranked {
		out = append(out, RecommendationDTO{
			Fragrance:  toFragranceDTO(match.Fragrance),
			Similarity: match.Similarity,
		})
	}
	return out, nil
}

func (s *service) Brands(ctx context.Context) ([]string, error) {
	brands, err := s.repo.Brands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list brands")
	}
	return brands, nil
}

func (s *service) Notes(ctx context.Context) ([]string, error) {
	rows, err := s.repo.NoteTiers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load note tiers")
	}

	seen := make(map[string]struct{})
	for _, fragrance := range rows {
		for _, note := range fragrance.AllNotes() {
			seen[note] = struct{}{}
		}
	}
	notes := make([]string, 0, len(seen))
	for note := range seen {
		notes = append(notes, note)
	}
	sort.Strings(notes)
	return notes, nil
}

func validateCreate(input CreateFragranceInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Brand) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "brand is required")
	}
	if !input.Gender.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid gender %q", input.Gender))
	}
	if !input.Concentration.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid concentration %q", input.Concentration))
	}
	if input.BottlePrice.IsNegative() || input.PerMlPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}
	if err := validateProfile(input.Profile); err != nil {
		return err
	}
	if input.SealedBottles < 0 || input.OpenDecantMl < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantities must not be negative")
	}
	if input.BottleSizeMl <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "bottle size must be positive")
	}
	return nil
}

func validateProfile(profile models.ScentProfile) error {
	for accord, value := range profile.ByAccord() {
		if value < 0 || value > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("accord %q must be between 0 and 100, got %d", accord, value))
		}
	}
	return nil
}

func applyUpdate(fragrance *models.Fragrance, input UpdateFragranceInput) error {
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		fragrance.Name = strings.TrimSpace(*input.Name)
	}
	if input.Brand != nil {
		if strings.TrimSpace(*input.Brand) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "brand must not be empty")
		}
		fragrance.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Description != nil {
		fragrance.Description = input.Description
	}
	if input.ImageURL != nil {
		fragrance.ImageURL = input.ImageURL
	}
	if input.BottlePrice != nil {
		if input.BottlePrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "bottle price must not be negative")
		}
		fragrance.BottlePrice = *input.BottlePrice
	}
	if input.PerMlPrice != nil {
		if input.PerMlPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "per-ml price must not be negative")
		}
		fragrance.PerMlPrice = *input.PerMlPrice
	}
	if input.Profile != nil {
		if err := validateProfile(*input.Profile); err != nil {
			return err
		}
		fragrance.Profile = *input.Profile
	}
	if input.TopNotes != nil {
		fragrance.TopNotes = pq.StringArray(NormalizeNotes(*input.TopNotes))
	}
	if input.MiddleNotes != nil {
		fragrance.MiddleNotes = pq.StringArray(NormalizeNotes(*input.MiddleNotes))
	}
	if input.BaseNotes != nil {
		fragrance.BaseNotes = pq.StringArray(NormalizeNotes(*input.BaseNotes))
	}
	if input.Gender != nil {
		if !input.Gender.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid gender %q", *input.Gender))
		}
		fragrance.Gender = *input.Gender
	}
	if input.Concentration != nil {
		if !input.Concentration.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid concentration %q", *input.Concentration))
		}
		fragrance.Concentration = *input.Concentration
	}
	if input.ReleaseYear != nil {
		fragrance.ReleaseYear = input.ReleaseYear
	}
	return nil
}

func mapFindErr(err error) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "fragrance not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fragrance")
}
