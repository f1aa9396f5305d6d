package inventory

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/thescentlab/scentlab-backend/pkg/db"
	"github.com/thescentlab/scentlab-backend/pkg/db/models"
	"github.com/thescentlab/scentlab-backend/pkg/enums"
	pkgerrors "github.com/thescentlab/scentlab-backend/pkg/errors"
	"github.com/thescentlab/scentlab-backend/pkg/logger"
)

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB) {
	t.Helper()
	dsn := "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Inventory{}); err != nil {
		t.Fatalf("migrate inventory: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	ledger, err := NewLedger(NewRepository(conn), db.NewClientFromGorm(conn), logg, nil)
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return ledger, conn
}

func seedInventory(t *testing.T, conn *gorm.DB, sealed, bottleSize, openMl int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	inv := models.Inventory{
		FragranceID:   id,
		SealedBottles: sealed,
		BottleSizeMl:  bottleSize,
		OpenDecantMl:  openMl,
	}
	if err := conn.Create(&inv).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return id
}

func loadInventory(t *testing.T, conn *gorm.DB, id uuid.UUID) models.Inventory {
	t.Helper()
	var inv models.Inventory
	if err := conn.First(&inv, "fragrance_id = ?", id).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	return inv
}

func TestDeductDecantTriggersConversion(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 1, 50, 10)

	result, err := ledger.Deduct(ctx, DeductInput{
		FragranceID: id,
		Type:        enums.PurchaseTypeDecant,
		Quantity:    40,
	})
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if result.Conversions != 1 {
		t.Fatalf("expected exactly one conversion, got %d", result.Conversions)
	}

	inv := loadInventory(t, conn, id)
	if inv.SealedBottles != 0 || inv.OpenDecantMl != 20 {
		t.Fatalf("unexpected stock after deduct: %+v", inv)
	}
}

func TestDeductDecantInsufficientRollsBack(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 1, 50, 10)

	_, err := ledger.Deduct(ctx, DeductInput{
		FragranceID: id,
		Type:        enums.PurchaseTypeDecant,
		Quantity:    70,
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	// A refused decant sale must leave both pools untouched, including the
	// sealed bottle that would have been opened.
	inv := loadInventory(t, conn, id)
	if inv.SealedBottles != 1 || inv.OpenDecantMl != 10 {
		t.Fatalf("stock mutated by failed deduct: %+v", inv)
	}
}

func TestDeductBottlesInsufficient(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 2, 100, 0)

	_, err := ledger.Deduct(ctx, DeductInput{
		FragranceID: id,
		Type:        enums.PurchaseTypeBottle,
		Quantity:    3,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv := loadInventory(t, conn, id); inv.SealedBottles != 2 {
		t.Fatalf("sealed bottles changed on failed deduct: %+v", inv)
	}
}

func TestDeductBottlesSuccess(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 5, 100, 30)

	result, err := ledger.Deduct(ctx, DeductInput{
		FragranceID: id,
		Type:        enums.PurchaseTypeBottle,
		Quantity:    2,
	})
	if err != nil {
		t.Fatalf("deduct: %v", err)
	}
	if result.SealedBottles != 3 || result.OpenDecantMl != 30 || result.Conversions != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestConvertOneBottleConservesTotalMl(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 3, 75, 40)

	before := loadInventory(t, conn, id).TotalAvailableMl()

	result, err := ledger.ConvertOneBottle(ctx, id)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if result.SealedBottles != 2 || result.OpenDecantMl != 115 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if after := loadInventory(t, conn, id).TotalAvailableMl(); after != before {
		t.Fatalf("conversion changed total ml: before %d after %d", before, after)
	}
}

func TestConvertOneBottleNoStock(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 0, 50, 25)

	_, err := ledger.ConvertOneBottle(ctx, id)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv := loadInventory(t, conn, id); inv.OpenDecantMl != 25 {
		t.Fatalf("decant pool changed on failed convert: %+v", inv)
	}
}

func TestDeductThenAvailabilityNoDoubleCount(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 0, 50, 60)

	if _, err := ledger.Deduct(ctx, DeductInput{
		FragranceID: id,
		Type:        enums.PurchaseTypeDecant,
		Quantity:    40,
	}); err != nil {
		t.Fatalf("deduct: %v", err)
	}

	avail, err := ledger.CheckAvailability(ctx, id, 40)
	if err != nil {
		t.Fatalf("check availability: %v", err)
	}
	if avail.Available {
		t.Fatalf("deducted milliliters reported as still available: %+v", avail)
	}
	if avail.TotalAvailableMl != 20 {
		t.Fatalf("expected 20 ml remaining, got %d", avail.TotalAvailableMl)
	}
}

func TestCheckAvailabilityUnknownFragrance(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)

	_, err := ledger.CheckAvailability(context.Background(), uuid.New(), 10)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeductInvalidInput(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 1, 50, 0)

	cases := []DeductInput{
		{FragranceID: id, Type: "sample", Quantity: 1},
		{FragranceID: id, Type: enums.PurchaseTypeBottle, Quantity: 0},
		{FragranceID: id, Type: enums.PurchaseTypeDecant, Quantity: -5},
	}
	for _, input := range cases {
		_, err := ledger.Deduct(ctx, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestAddRestocksPools(t *testing.T) {
	t.Parallel()

	ledger, conn := newTestLedger(t)
	ctx := context.Background()
	id := seedInventory(t, conn, 1, 50, 5)

	if _, err := ledger.Add(ctx, RestockInput{FragranceID: id, Type: enums.PurchaseTypeBottle, Quantity: 4}); err != nil {
		t.Fatalf("restock bottles: %v", err)
	}
	avail, err := ledger.Add(ctx, RestockInput{FragranceID: id, Type: enums.PurchaseTypeDecant, Quantity: 45})
	if err != nil {
		t.Fatalf("restock decant: %v", err)
	}

	if avail.SealedBottles != 5 || avail.OpenDecantMl != 50 {
		t.Fatalf("unexpected stock after restock: %+v", avail)
	}
	if avail.TotalAvailableMl != 300 {
		t.Fatalf("expected 300 total ml, got %d", avail.TotalAvailableMl)
	}
}

func TestAddUnknownFragrance(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)

	_, err := ledger.Add(context.Background(), RestockInput{
		FragranceID: uuid.New(),
		Type:        enums.PurchaseTypeDecant,
		Quantity:    10,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}
