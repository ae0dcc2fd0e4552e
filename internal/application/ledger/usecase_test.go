package ledger_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/sanse-api/internal/application/dto"
	"github.com/jhoicas/sanse-api/internal/application/ledger"
	"github.com/jhoicas/sanse-api/internal/domain"
	"github.com/jhoicas/sanse-api/internal/domain/entity"
	"github.com/jhoicas/sanse-api/internal/infrastructure/lock"
	"github.com/jhoicas/sanse-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payer = "user-1"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newLedger() (*ledger.UseCase, *memory.Store) {
	store := memory.NewStore()
	return ledger.NewUseCase(store, store.Expenses(), lock.NewKeyedMutex(), zerolog.Nop()), store
}

func expense(t *testing.T, uc *ledger.UseCase, payerID, amount string, date time.Time) *dto.ExpenseResponse {
	t.Helper()
	e, err := uc.CreateExpense(context.Background(), dto.CreateExpenseRequest{
		Description: "Compra de insumos",
		Amount:      d(amount),
		PayerID:     payerID,
		Date:        &date,
	})
	require.NoError(t, err)
	return e
}

var day = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// ─── GeneralRefund ──────────────────────────────────────────────────────────

func TestGeneralRefund_MasAntiguoPrimero(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger()
	// creado primero el más reciente para verificar que el orden es por fecha
	second := expense(t, uc, payer, "4000", day.AddDate(0, 0, 1))
	first := expense(t, uc, payer, "3000", day)

	out, err := uc.GeneralRefund(ctx, payer, d("5000"))
	require.NoError(t, err)

	require.Len(t, out.Refunds, 2)
	assert.Equal(t, first.ID, *out.Refunds[0].RelatedExpenseID)
	assert.True(t, out.Refunds[0].Amount.Equal(d("3000")), "cubre completo el gasto más antiguo")
	assert.Equal(t, second.ID, *out.Refunds[1].RelatedExpenseID)
	assert.True(t, out.Refunds[1].Amount.Equal(d("2000")), "cubre parcialmente el siguiente")
	assert.Nil(t, out.Refunds[0].PayerID, "el reintegro lo paga el negocio")
	assert.True(t, out.Unallocated.IsZero())

	debt, err := uc.DebtSummary(ctx, payer)
	require.NoError(t, err)
	assert.True(t, debt.Outstanding.Equal(d("2000")), "deuda restante, got %s", debt.Outstanding)
	assert.True(t, debt.Display.Equal(d("2000")))
}

func TestGeneralRefund_SobranteSinAsignar(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger()
	expense(t, uc, payer, "1000", day)
	expense(t, uc, "", "9999", day) // pagado por el negocio: no es deuda

	out, err := uc.GeneralRefund(ctx, payer, d("1500"))
	require.NoError(t, err)
	require.Len(t, out.Refunds, 1)
	assert.True(t, out.Unallocated.Equal(d("500")))

	out, err = uc.GeneralRefund(ctx, payer, d("100"))
	require.NoError(t, err)
	assert.Empty(t, out.Refunds, "sin deuda no se crean reintegros")
	assert.True(t, out.Unallocated.Equal(d("100")))
}

func TestGeneralRefund_SolicitudInvalida(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger()

	_, err := uc.GeneralRefund(ctx, payer, decimal.Zero)
	assert.Equal(t, domain.CodeInvalidRequest, domain.CodeOf(err))

	_, err = uc.GeneralRefund(ctx, "SANSE", d("10"))
	assert.Equal(t, domain.CodeInvalidRequest, domain.CodeOf(err), "el negocio no se reintegra a sí mismo")
}

// ─── TargetedRefund ─────────────────────────────────────────────────────────

func TestTargetedRefund(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger()
	e := expense(t, uc, payer, "3000", day)

	out, err := uc.TargetedRefund(ctx, e.ID, d("1000"))
	require.NoError(t, err)
	require.Len(t, out.Refunds, 1)
	assert.Equal(t, e.ID, *out.Refunds[0].RelatedExpenseID)
	assert.Nil(t, out.Refunds[0].PayerID)

	_, err = uc.TargetedRefund(ctx, e.ID, d("2500"))
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidRequest, domain.CodeOf(err), "no puede superar la deuda pendiente")

	_, err = uc.TargetedRefund(ctx, e.ID, d("2000"))
	require.NoError(t, err, "completa exactamente la deuda")
}

func TestTargetedRefund_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger()
	business := expense(t, uc, "SANSE", "3000", day)
	owed := expense(t, uc, payer, "3000", day)
	assert.Nil(t, business.PayerID)

	_, err := uc.TargetedRefund(ctx, uuid.New().String(), d("10"))
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))

	_, err = uc.TargetedRefund(ctx, business.ID, d("10"))
	assert.Equal(t, domain.CodeInvalidRequest, domain.CodeOf(err), "un gasto del negocio no tiene deuda")

	_, err = uc.TargetedRefund(ctx, owed.ID, d("-1"))
	assert.Equal(t, domain.CodeInvalidRequest, domain.CodeOf(err))
}

// ─── Concurrencia ───────────────────────────────────────────────────────────

func TestRefunds_ConcurrentesNoSuperanLaDeuda(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger()
	a := expense(t, uc, payer, "3000", day)
	b := expense(t, uc, payer, "4000", day.AddDate(0, 0, 1))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = uc.GeneralRefund(ctx, payer, d("1300"))
		}()
		go func() {
			defer wg.Done()
			_, _ = uc.TargetedRefund(ctx, a.ID, d("700"))
		}()
	}
	wg.Wait()

	refunded, err := store.Expenses().RefundedAmounts(ctx, []string{a.ID, b.ID})
	require.NoError(t, err)
	assert.True(t, refunded[a.ID].LessThanOrEqual(d("3000")), "reintegros de A: %s", refunded[a.ID])
	assert.True(t, refunded[b.ID].LessThanOrEqual(d("4000")), "reintegros de B: %s", refunded[b.ID])

	debt, err := uc.DebtSummary(ctx, payer)
	require.NoError(t, err)
	assert.True(t, debt.Outstanding.IsZero(), "13000 + 7000 pedidos cubren toda la deuda de 7000, got %s", debt.Outstanding)
}

// ─── DebtSummary / DeleteExpense ────────────────────────────────────────────

func TestDebtSummary_NegativoSoloSeRecortaAlMostrar(t *testing.T) {
	ctx := context.Background()
	uc, store := newLedger()
	e := expense(t, uc, payer, "1000", day)

	// reintegro excesivo heredado, cargado directo en el libro
	related := e.ID
	require.NoError(t, store.Expenses().Create(ctx, &entity.Expense{
		ID: uuid.New().String(), Description: "legado", Amount: d("1500"),
		Payer: entity.BusinessPayer(), RelatedExpenseID: &related, Date: day,
	}))

	debt, err := uc.DebtSummary(ctx, payer)
	require.NoError(t, err)
	assert.True(t, debt.Outstanding.Equal(d("-500")), "el libro no se recorta")
	assert.True(t, debt.Display.IsZero(), "la vista nunca muestra deuda negativa")
	require.Len(t, debt.Expenses, 1)
	assert.True(t, debt.Expenses[0].Refunded.Equal(d("1500")))
}

func TestDeleteExpense_BloqueadoPorReintegros(t *testing.T) {
	ctx := context.Background()
	uc, _ := newLedger()
	e := expense(t, uc, payer, "1000", day)
	free := expense(t, uc, payer, "500", day)

	_, err := uc.TargetedRefund(ctx, e.ID, d("100"))
	require.NoError(t, err)

	err = uc.DeleteExpense(ctx, e.ID)
	require.Error(t, err)
	assert.Equal(t, domain.CodeReferentialConflict, domain.CodeOf(err))

	require.NoError(t, uc.DeleteExpense(ctx, free.ID))
	assert.ErrorIs(t, uc.DeleteExpense(ctx, free.ID), domain.ErrNotFound)
}

func TestCreateExpense_MontoInvalido(t *testing.T) {
	uc, _ := newLedger()
	_, err := uc.CreateExpense(context.Background(), dto.CreateExpenseRequest{Description: "x", Amount: d("0")})
	assert.Equal(t, domain.CodeInvalidRequest, domain.CodeOf(err))
}
