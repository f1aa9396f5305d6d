package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/pkg/db"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
	"github.com/thescentlab/scentlab-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Ledger owns the dual-stock rules: sealed bottle sales, decant sales with
// implicit bottle conversion, and restocking. Checkout composes the Tx
// variants into its own transaction so a failed line item rolls back every
// deduction of the order.
type Ledger struct {
	repo    *Repository
	tx      txRunner
	logg    *logger.Logger
	metrics *metrics.InventoryMetrics
}

// NewLedger wires the inventory ledger service.
func NewLedger(repo *Repository, tx txRunner, logg *logger.Logger, m *metrics.InventoryMetrics) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Ledger{repo: repo, tx: tx, logg: logg, metrics: m}, nil
}

// CheckAvailability reports whether mlNeeded milliliters are sellable across
// both pools. Pure read, no side effects.
func (l *Ledger) CheckAvailability(ctx context.Context, fragranceID uuid.UUID, mlNeeded int) (*Availability, error) {
	inv, err := l.repo.Get(ctx, fragranceID)
	if err != nil {
		return nil, mapGetErr(err, fragranceID)
	}

	total := inv.TotalAvailableMl()
	return &Availability{
		FragranceID:      fragranceID,
		Available:        mlNeeded >= 0 && total >= mlNeeded,
		TotalAvailableMl: total,
		SealedBottles:    inv.SealedBottles,
		BottleSizeMl:     inv.BottleSizeMl,
		OpenDecantMl:     inv.OpenDecantMl,
	}, nil
}

// ConvertOneBottle opens a single sealed bottle into the decant pool.
func (l *Ledger) ConvertOneBottle(ctx context.Context, fragranceID uuid.UUID) (*DeductResult, error) {
	var result *DeductResult
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)

		inv, err := repo.Get(ctx, fragranceID)
		if err != nil {
			return mapGetErr(err, fragranceID)
		}

		ok, err := repo.ConvertBottle(ctx, fragranceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "convert bottle")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "no sealed bottles to convert").
				WithDetails(map[string]any{"sealed_bottles": inv.SealedBottles})
		}

		updated, err := repo.Get(ctx, fragranceID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload inventory")
		}
		result = &DeductResult{
			Conversions:   1,
			SealedBottles: updated.SealedBottles,
			OpenDecantMl:  updated.OpenDecantMl,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.metrics.AddConversions(1)
	return result, nil
}

// Deduct runs one deduction in its own transaction.
func (l *Ledger) Deduct(ctx context.Context, input DeductInput) (*DeductResult, error) {
	var result *DeductResult
	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		result, txErr = l.DeductTx(ctx, tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeductTx applies a deduction inside the caller's transaction. A failed
// deduction returns an error and leaves the transaction dirty-free for this
// fragrance: the guarded update either applies fully or not at all, so there
// is never a converted bottle without the matching sale.
func (l *Ledger) DeductTx(ctx context.Context, tx *gorm.DB, input DeductInput) (*DeductResult, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase type %q", input.Type))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	repo := l.repo.WithTx(tx)
	inv, err := repo.Get(ctx, input.FragranceID)
	if err != nil {
		return nil, mapGetErr(err, input.FragranceID)
	}

	var result *DeductResult
	switch input.Type {
	case enums.PurchaseTypeBottle:
		result, err = l.deductBottles(ctx, repo, inv, input.Quantity)
	case enums.PurchaseTypeDecant:
		result, err = l.deductDecant(ctx, repo, inv, input.Quantity)
	}
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			l.metrics.IncInsufficientStock(input.Type.String())
		}
		return nil, err
	}

	l.metrics.IncDeduction(input.Type.String())
	l.metrics.AddConversions(result.Conversions)
	return result, nil
}

func (l *Ledger) deductBottles(ctx context.Context, repo *Repository, inv *models.Inventory, count int) (*DeductResult, error) {
	ok, err := repo.DeductBottles(ctx, inv.FragranceID, count)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deduct bottles")
	}
	if !ok {
		return nil, insufficientErr("not enough sealed bottles", count, inv)
	}
	return &DeductResult{
		SealedBottles: inv.SealedBottles - count,
		OpenDecantMl:  inv.OpenDecantMl,
	}, nil
}

func (l *Ledger) deductDecant(ctx context.Context, repo *Repository, inv *models.Inventory, ml int) (*DeductResult, error) {
	conversions := conversionsNeeded(inv, ml)
	if conversions > inv.SealedBottles || inv.OpenDecantMl+conversions*inv.BottleSizeMl < ml {
		return nil, insufficientErr("not enough stock for decant", ml, inv)
	}

	ok, err := repo.DeductDecantWithConversions(ctx, inv.FragranceID, conversions, ml)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deduct decant")
	}
	if !ok {
		// Guard refused: stock moved under us between read and write.
		return nil, insufficientErr("not enough stock for decant", ml, inv)
	}
	return &DeductResult{
		Conversions:   conversions,
		SealedBottles: inv.SealedBottles - conversions,
		OpenDecantMl:  inv.OpenDecantMl + conversions*inv.BottleSizeMl - ml,
	}, nil
}

// conversionsNeeded returns how many sealed bottles must be opened so the
// decant pool covers ml. May exceed SealedBottles; callers check.
func conversionsNeeded(inv *models.Inventory, ml int) int {
	if inv.OpenDecantMl >= ml {
		return 0
	}
	shortfall := ml - inv.OpenDecantMl
	return (shortfall + inv.BottleSizeMl - 1) / inv.BottleSizeMl
}

// Add restocks the named pool. Quantity is bottles for the sealed pool and
// milliliters for the decant pool.
func (l *Ledger) Add(ctx context.Context, input RestockInput) (*Availability, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid purchase type %q", input.Type))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	err := l.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := l.repo.WithTx(tx)
		var (
			ok    bool
			txErr error
		)
		if input.Type == enums.PurchaseTypeBottle {
			ok, txErr = repo.AddBottles(ctx, input.FragranceID, input.Quantity)
		} else {
			ok, txErr = repo.AddDecantMl(ctx, input.FragranceID, input.Quantity)
		}
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "restock inventory")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found").
				WithDetails(map[string]any{"fragrance_id": input.FragranceID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = l.logg.WithFragranceID(ctx, input.FragranceID.String())
	l.logg.Info(ctx, "inventory restocked")

	return l.CheckAvailability(ctx, input.FragranceID, 0)
}

func insufficientErr(msg string, requested int, inv *models.Inventory) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, msg).
		WithDetails(map[string]any{
			"requested":          requested,
			"sealed_bottles":     inv.SealedBottles,
			"open_decant_ml":     inv.OpenDecantMl,
			"total_available_ml": inv.TotalAvailableMl(),
		})
}

func mapGetErr(err error, fragranceID uuid.UUID) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "fragrance inventory not found").
			WithDetails(map[string]any{"fragrance_id": fragranceID})
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
}
