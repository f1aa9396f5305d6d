package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/thescentlab/scentlab-backend/api/responses"
	"github.com/thescentlab/scentlab-backend/api/validators"
	"github.com/thescentlab/scentlab-backend/internal/catalog"
	"github.com/thescentlab/scentlab-backend/internal/inventory"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/pagination"
)

// FragranceList returns one page of the active catalog with optional filters.
func FragranceList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters := catalog.ListFilters{
			Brand: strings.TrimSpace(r.URL.Query().Get("brand")),
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("gender")); raw != "" {
			gender := enums.Gender(raw)
			filters.Gender = &gender
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("concentration")); raw != "" {
			concentration := enums.Concentration(raw)
			filters.Concentration = &concentration
		}

		page, err := svc.List(ctx, catalog.ListInput{
			Filters: filters,
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// FragranceGet returns a single active fragrance with its stock snapshot.
func FragranceGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "fragranceId"), "fragrance id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fragrance, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, fragrance)
	}
}

// FragranceBrands lists the distinct brands in the active catalog.
func FragranceBrands(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		brands, err := svc.Brands(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]string{"brands": brands})
	}
}

// FragranceNotes lists the distinct note vocabulary across the catalog.
func FragranceNotes(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		notes, err := svc.Notes(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string][]string{"notes": notes})
	}
}

type scentFilterRequest struct {
	Ranges map[string]catalog.ProfileRange `json:"ranges" validate:"required"`
}

// FragranceScentFilter matches fragrances whose profile falls inside every
// requested accord range.
func FragranceScentFilter(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload scentFilterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		matches, err := svc.FilterByProfile(ctx, catalog.ProfileFilterInput{Ranges: payload.Ranges})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"fragrances": matches})
	}
}

type recommendRequest struct {
	Notes     []string `json:"notes" validate:"required,min=1,dive,required"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// FragranceRecommend ranks the catalog by note similarity to the given set.
func FragranceRecommend(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload recommendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := catalog.RecommendInput{Notes: payload.Notes}
		if payload.Threshold != nil {
			input.Threshold = *payload.Threshold
		}

		matches, err := svc.Recommend(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"recommendations": matches})
	}
}

// FragranceAvailability reports whether a decant request can be satisfied.
func FragranceAvailability(ledger *inventory.Ledger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ledger == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory ledger unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "fragranceId"), "fragrance id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ml, err := validators.ParseQueryInt(r, "ml", 0, 0, 1<<20)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		availability, err := ledger.CheckAvailability(ctx, id, ml)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}

type createFragranceRequest struct {
	Name          string         `json:"name" validate:"required"`
	Brand         string         `json:"brand" validate:"required"`
	Description   *string        `json:"description,omitempty"`
	ImageURL      *string        `json:"image_url,omitempty"`
	BottlePrice   string         `json:"bottle_price" validate:"required"`
	PerMlPrice    string         `json:"per_ml_price" validate:"required"`
	Profile       map[string]int `json:"scent_profile" validate:"required"`
	TopNotes      []string       `json:"top_notes,omitempty"`
	MiddleNotes   []string       `json:"middle_notes,omitempty"`
	BaseNotes     []string       `json:"base_notes,omitempty"`
	Gender        string         `json:"gender" validate:"required"`
	Concentration string         `json:"concentration" validate:"required"`
	ReleaseYear   *int           `json:"release_year,omitempty"`
	SealedBottles int            `json:"sealed_bottles" validate:"min=0"`
	BottleSizeMl  int            `json:"bottle_size_ml" validate:"required,min=1"`
	OpenDecantMl  int            `json:"open_decant_ml" validate:"min=0"`
}

// FragranceCreate adds a fragrance plus its opening stock.
func FragranceCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createFragranceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fragrance, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, fragrance)
	}
}

func (req createFragranceRequest) toCreateInput() (catalog.CreateFragranceInput, error) {
	bottlePrice, err := decimal.NewFromString(strings.TrimSpace(req.BottlePrice))
	if err != nil {
		return catalog.CreateFragranceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bottle price")
	}
	perMlPrice, err := decimal.NewFromString(strings.TrimSpace(req.PerMlPrice))
	if err != nil {
		return catalog.CreateFragranceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid per-ml price")
	}
	profile, err := scentProfileFromMap(req.Profile)
	if err != nil {
		return catalog.CreateFragranceInput{}, err
	}

	return catalog.CreateFragranceInput{
		Name:          req.Name,
		Brand:         req.Brand,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		BottlePrice:   bottlePrice,
		PerMlPrice:    perMlPrice,
		Profile:       profile,
		TopNotes:      req.TopNotes,
		MiddleNotes:   req.MiddleNotes,
		BaseNotes:     req.BaseNotes,
		Gender:        enums.Gender(strings.TrimSpace(req.Gender)),
		Concentration: enums.Concentration(strings.TrimSpace(req.Concentration)),
		ReleaseYear:   req.ReleaseYear,
		SealedBottles: req.SealedBottles,
		BottleSizeMl:  req.BottleSizeMl,
		OpenDecantMl:  req.OpenDecantMl,
	}, nil
}

type updateFragranceRequest struct {
	Name          *string         `json:"name,omitempty"`
	Brand         *string         `json:"brand,omitempty"`
	Description   *string         `json:"description,omitempty"`
	ImageURL      *string         `json:"image_url,omitempty"`
	BottlePrice   *string         `json:"bottle_price,omitempty"`
	PerMlPrice    *string         `json:"per_ml_price,omitempty"`
	Profile       *map[string]int `json:"scent_profile,omitempty"`
	TopNotes      *[]string       `json:"top_notes,omitempty"`
	MiddleNotes   *[]string       `json:"middle_notes,omitempty"`
	BaseNotes     *[]string       `json:"base_notes,omitempty"`
	Gender        *string         `json:"gender,omitempty"`
	Concentration *string         `json:"concentration,omitempty"`
	ReleaseYear   *int            `json:"release_year,omitempty"`
}

// FragranceUpdate applies a partial update to catalog metadata.
func FragranceUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "fragranceId"), "fragrance id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateFragranceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fragrance, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, fragrance)
	}
}

func (req updateFragranceRequest) toUpdateInput() (catalog.UpdateFragranceInput, error) {
	input := catalog.UpdateFragranceInput{
		Name:        req.Name,
		Brand:       req.Brand,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		TopNotes:    req.TopNotes,
		MiddleNotes: req.MiddleNotes,
		BaseNotes:   req.BaseNotes,
		ReleaseYear: req.ReleaseYear,
	}
	if req.BottlePrice != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*req.BottlePrice))
		if err != nil {
			return catalog.UpdateFragranceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bottle price")
		}
		input.BottlePrice = &price
	}
	if req.PerMlPrice != nil {
		price, err := decimal.NewFromString(strings.TrimSpace(*req.PerMlPrice))
		if err != nil {
			return catalog.UpdateFragranceInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid per-ml price")
		}
		input.PerMlPrice = &price
	}
	if req.Profile != nil {
		profile, err := scentProfileFromMap(*req.Profile)
		if err != nil {
			return catalog.UpdateFragranceInput{}, err
		}
		input.Profile = &profile
	}
	if req.Gender != nil {
		gender := enums.Gender(strings.TrimSpace(*req.Gender))
		input.Gender = &gender
	}
	if req.Concentration != nil {
		concentration := enums.Concentration(strings.TrimSpace(*req.Concentration))
		input.Concentration = &concentration
	}
	return input, nil
}

// FragranceDelete deactivates a fragrance, hiding it from the storefront.
func FragranceDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "fragranceId"), "fragrance id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

type restockRequest struct {
	Type     string `json:"type" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// FragranceRestock adds stock to one of the two inventory pools.
func FragranceRestock(ledger *inventory.Ledger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ledger == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory ledger unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "fragranceId"), "fragrance id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload restockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		availability, err := ledger.Add(ctx, inventory.RestockInput{
			FragranceID: id,
			Type:        enums.PurchaseType(strings.TrimSpace(payload.Type)),
			Quantity:    payload.Quantity,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, availability)
	}
}

// FragranceConvert opens one sealed bottle into the decant pool.
func FragranceConvert(ledger *inventory.Ledger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if ledger == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory ledger unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(chi.URLParam(r, "fragranceId"), "fragrance id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := ledger.ConvertOneBottle(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func scentProfileFromMap(values map[string]int) (models.ScentProfile, error) {
	profile := models.ScentProfile{}
	for name, value := range values {
		accord, err := enums.ParseAccord(strings.ToLower(strings.TrimSpace(name)))
		if err != nil {
			return models.ScentProfile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid accord")
		}
		switch accord {
		case enums.AccordCitrus:
			profile.Citrus = value
		case enums.AccordFloral:
			profile.Floral = value
		case enums.AccordWoody:
			profile.Woody = value
		case enums.AccordSpicy:
			profile.Spicy = value
		case enums.AccordFresh:
			profile.Fresh = value
		case enums.AccordMusky:
			profile.Musky = value
		case enums.AccordSweet:
			profile.Sweet = value
		case enums.AccordOriental:
			profile.Oriental = value
		}
	}
	return profile, nil
}
