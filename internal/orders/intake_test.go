package orders

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optbazar/optbazar/internal/shared"
)

type intakeFixture struct {
	intake   *Intake
	repo     *memoryRepository
	notifier *notifierStub
	metrics  *metricsStub
}

func newIntakeFixture(t *testing.T) intakeFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepository()
	notifier := &notifierStub{}
	metrics := newMetricsStub()
	products := catalogStub{
		"p1": product("p1", "Огурцы свежие", 50, 10),
		"p2": product("p2", "Яблоки Гала", 120, 20),
	}
	intake := NewIntake(repo, products, shared.NewIdempotencyStore(client, time.Hour), notifier, metrics, nil)
	return intakeFixture{intake: intake, repo: repo, notifier: notifier, metrics: metrics}
}

func scenarioSubmission() Submission {
	return Submission{
		Items: []SubmittedItem{
			{ProductID: "p1", Quantity: dec(50)},
			{ProductID: "p2", Quantity: dec(40)},
		},
		Customer: validCustomer(),
	}
}

func TestSubmitWebPersistsOrder(t *testing.T) {
	f := newIntakeFixture(t)
	sub := scenarioSubmission()
	sub.Customer.ExternalUserID = "spoofed"

	order, err := f.intake.SubmitWeb(context.Background(), sub)
	require.NoError(t, err)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, SourceWeb, order.Source)
	assert.Empty(t, order.Customer.ExternalUserID)
	assert.True(t, order.TotalAmount.Equal(dec(7300)))
	assert.Equal(t, "Огурцы свежие", order.Items[0].Name)

	stored, err := f.repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.Items, stored.Items)
	assert.Len(t, f.notifier.orders, 1)
	assert.Equal(t, 1, f.metrics.submissions["web/accepted"])
}

func TestSubmitExternalTagsChannel(t *testing.T) {
	f := newIntakeFixture(t)

	order, err := f.intake.SubmitExternal(context.Background(), ExternalSubmission{
		Submission:     scenarioSubmission(),
		ExternalUserID: "tg-4242",
	})
	require.NoError(t, err)
	assert.Equal(t, SourceExternal, order.Source)
	assert.Equal(t, "tg-4242", order.Customer.ExternalUserID)

	_, err = f.intake.SubmitExternal(context.Background(), ExternalSubmission{Submission: scenarioSubmission()})
	assert.ErrorIs(t, err, ErrMissingExternalUser)
}

func TestSubmitTrustsClientSnapshot(t *testing.T) {
	f := newIntakeFixture(t)
	sub := Submission{
		Items: []SubmittedItem{{
			ProductID:         "p1",
			Name:              "Огурцы (акция)",
			Price:             decimal.NewNullDecimal(dec(45)),
			MinOrderIncrement: decimal.NewNullDecimal(dec(10)),
			Quantity:          dec(20),
		}},
		Customer: validCustomer(),
	}
	order, err := f.intake.SubmitWeb(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "Огурцы (акция)", order.Items[0].Name)
	assert.True(t, order.TotalAmount.Equal(dec(900)))
}

func TestSubmitKeepsFineScalePrices(t *testing.T) {
	f := newIntakeFixture(t)
	sub := Submission{
		Items: []SubmittedItem{{
			ProductID:         "p1",
			Name:              "Шафран",
			Price:             decimal.NewNullDecimal(decimal.RequireFromString("0.125")),
			MinOrderIncrement: decimal.NewNullDecimal(dec(1)),
			Quantity:          dec(8),
		}},
		Customer: validCustomer(),
	}
	order, err := f.intake.SubmitWeb(context.Background(), sub)
	require.NoError(t, err)

	stored, err := f.repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "0.125", stored.Items[0].Price.String())
	sum := decimal.Zero
	for _, item := range stored.Items {
		sum = sum.Add(item.Price.Mul(item.Quantity))
	}
	assert.True(t, stored.TotalAmount.Equal(sum))
	assert.True(t, stored.TotalAmount.Equal(dec(1)))
}

func TestSubmitUnknownProduct(t *testing.T) {
	f := newIntakeFixture(t)
	sub := Submission{Items: []SubmittedItem{{ProductID: "nope", Quantity: dec(10)}}, Customer: validCustomer()}

	_, err := f.intake.SubmitWeb(context.Background(), sub)
	assert.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, "items[0].productId", shared.FieldOf(err))
	assert.Empty(t, f.repo.orders)
}

func TestSubmitValidationLeavesNoTrace(t *testing.T) {
	f := newIntakeFixture(t)
	sub := scenarioSubmission()
	sub.Customer.Phone = "abc"
	sub.IdempotencyKey = "key-1"

	_, err := f.intake.SubmitWeb(context.Background(), sub)
	assert.ErrorIs(t, err, ErrPhoneFormat)
	assert.Empty(t, f.repo.orders)
	assert.Empty(t, f.notifier.orders)

	sub.Customer.Phone = "+7 999 123-45-67"
	_, err = f.intake.SubmitWeb(context.Background(), sub)
	assert.NoError(t, err, "a rejected attempt must not consume the key")
}

func TestSubmitEmptyCart(t *testing.T) {
	f := newIntakeFixture(t)
	_, err := f.intake.SubmitWeb(context.Background(), Submission{Customer: validCustomer()})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 1, f.metrics.submissions["web/rejected"])
}

func TestSubmitDuplicateKey(t *testing.T) {
	f := newIntakeFixture(t)
	sub := scenarioSubmission()
	sub.IdempotencyKey = "checkout-123"

	_, err := f.intake.SubmitWeb(context.Background(), sub)
	require.NoError(t, err)
	_, err = f.intake.SubmitWeb(context.Background(), sub)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.ErrorIs(t, err, shared.ErrConflict)
	assert.Len(t, f.repo.orders, 1)
}

func TestSubmitReleasesKeyOnStorageFailure(t *testing.T) {
	f := newIntakeFixture(t)
	sub := scenarioSubmission()
	sub.IdempotencyKey = "checkout-9"

	f.repo.createErr = errStorageDown
	_, err := f.intake.SubmitWeb(context.Background(), sub)
	assert.ErrorIs(t, err, errStorageDown)
	assert.Empty(t, f.notifier.orders)

	f.repo.createErr = nil
	_, err = f.intake.SubmitWeb(context.Background(), sub)
	assert.NoError(t, err)
}

func TestSubmitSurvivesNotifierFailure(t *testing.T) {
	f := newIntakeFixture(t)
	f.notifier.err = errStorageDown

	order, err := f.intake.SubmitWeb(context.Background(), scenarioSubmission())
	require.NoError(t, err)
	_, err = f.repo.Get(context.Background(), order.ID)
	assert.NoError(t, err)
}

func TestOrderFrozenAgainstCatalogChanges(t *testing.T) {
	f := newIntakeFixture(t)
	order, err := f.intake.SubmitWeb(context.Background(), scenarioSubmission())
	require.NoError(t, err)

	products := f.intake.products.(catalogStub)
	p := products["p1"]
	p.Price = dec(1000)
	products["p1"] = p

	stored, err := f.repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, stored.TotalAmount.Equal(dec(7300)))
	assert.True(t, stored.Items[0].Price.Equal(dec(50)))
}
