package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/thescentlab/scentlab-backend/pkg/db"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

// fragranceLoader verifies a fragrance exists before it can be saved.
type fragranceLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Fragrance, error)
}

// Service exposes account profile, preference, and favorites operations.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*ProfileDTO, error)
	AddFavorite(ctx context.Context, userID, fragranceID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, fragranceID uuid.UUID) error
	ListFavorites(ctx context.Context, input ListFavoritesInput) (*pagination.Page[FavoriteDTO], error)
}

type service struct {
	repo       *Repository
	fragrances fragranceLoader
	logg       *logger.Logger
}

// NewService builds a users service with the required dependencies.
func NewService(repo *Repository, fragrances fragranceLoader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if fragrances == nil {
		return nil, fmt.Errorf("fragrance loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, fragrances: fragrances, logg: logg}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toProfileDTO(*user)
	return &dto, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileDTO, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "display name cannot be empty")
		}
		fields["display_name"] = name
		user.DisplayName = name
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, userID, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update profile")
		}
	}

	dto := toProfileDTO(*user)
	return &dto, nil
}

// UpdatePreferences replaces the whole accord vector at once. Partial updates
// are not supported so the stored vector always reflects one submission.
func (s *service) UpdatePreferences(ctx context.Context, userID uuid.UUID, input UpdatePreferencesInput) (*ProfileDTO, error) {
	if err := validatePreferences(input.Preferences); err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdatePreferences(ctx, userID, input.Preferences); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update preferences")
	}
	user.Preferences = input.Preferences

	ctx = s.logg.WithUserID(ctx, userID.String())
	s.logg.Info(ctx, "scent preferences updated")

	dto := toProfileDTO(*user)
	return &dto, nil
}

// AddFavorite ensures the fragrance is live and saves it. Saving the same
// fragrance twice is a no-op.
func (s *service) AddFavorite(ctx context.Context, userID, fragranceID uuid.UUID) error {
	if fragranceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "fragrance id is required")
	}
	if _, err := s.fragrances.FindActiveByID(ctx, fragranceID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "fragrance not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load fragrance")
	}

	if err := s.repo.AddFavorite(ctx, userID, fragranceID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save favorite")
	}
	return nil
}

// RemoveFavorite drops the saved fragrance regardless of prior state.
func (s *service) RemoveFavorite(ctx context.Context, userID, fragranceID uuid.UUID) error {
	if fragranceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "fragrance id is required")
	}
	if err := s.repo.RemoveFavorite(ctx, userID, fragranceID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove favorite")
	}
	return nil
}

func (s *service) ListFavorites(ctx context.Context, input ListFavoritesInput) (*pagination.Page[FavoriteDTO], error) {
	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, err := s.repo.ListFavorites(ctx, input.UserID, cursor, pagination.LimitWithBuffer(input.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}

	page := pagination.BuildPage(rows, input.Pagination.Limit, func(dto FavoriteDTO) pagination.Cursor {
		return pagination.Cursor{CreatedAt: dto.FavoritedAt, ID: dto.FragranceID}
	})
	return &page, nil
}

func (s *service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func validatePreferences(prefs models.ScentProfile) error {
	for accord, value := range prefs.ByAccord() {
		if value < 0 || value > 100 {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("preference %s must be between 0 and 100", accord))
		}
	}
	return nil
}
