package sales

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
)

func TestSplitInstallments(t *testing.T) {
	tests := []struct {
		name  string
		total int64
		n     int
		want  []int64
	}{
		{name: "even split", total: 900, n: 3, want: []int64{300, 300, 300}},
		{name: "remainder on last", total: 1000, n: 3, want: []int64{333, 333, 334}},
		{name: "single installment", total: 12345, n: 1, want: []int64{12345}},
		{name: "total smaller than count", total: 2, n: 3, want: []int64{0, 0, 2}},
		{name: "prime total", total: 101, n: 4, want: []int64{25, 25, 25, 26}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitInstallments(tt.total, tt.n)
			assert.Equal(t, tt.want, got)

			var sum int64
			for _, amount := range got {
				sum += amount
			}
			assert.Equal(t, tt.total, sum, "installments must sum to the total")
		})
	}
}

func TestOrderInputValidate(t *testing.T) {
	customerID := uuid.New()
	productID := uuid.New()

	valid := func() OrderInput {
		return OrderInput{
			CustomerID:    customerID,
			Items:         []OrderItemInput{{ProductID: productID, Quantity: 2}},
			PaymentMethod: models.PaymentMethodPix,
		}
	}

	t.Run("valid immediate order", func(t *testing.T) {
		in := valid()
		require.NoError(t, in.Validate())
	})

	t.Run("valid crediario order", func(t *testing.T) {
		in := valid()
		in.PaymentMethod = models.PaymentMethodCrediario
		in.Installments = 3
		require.NoError(t, in.Validate())
	})

	tests := []struct {
		name   string
		mutate func(*OrderInput)
	}{
		{"missing customer", func(in *OrderInput) { in.CustomerID = uuid.Nil }},
		{"no items", func(in *OrderInput) { in.Items = nil }},
		{"unknown payment method", func(in *OrderInput) { in.PaymentMethod = "boleto" }},
		{"crediario without installments", func(in *OrderInput) {
			in.PaymentMethod = models.PaymentMethodCrediario
			in.Installments = 0
		}},
		{"zero quantity", func(in *OrderInput) { in.Items[0].Quantity = 0 }},
		{"negative quantity", func(in *OrderInput) { in.Items[0].Quantity = -1 }},
		{"nil product", func(in *OrderInput) { in.Items[0].ProductID = uuid.Nil }},
		{"duplicate product", func(in *OrderInput) {
			in.Items = append(in.Items, OrderItemInput{ProductID: productID, Quantity: 1})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.Equal(t, apperr.Validation, apperr.KindOf(err))
		})
	}
}

func TestLockOrder(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c := uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	items := []OrderItemInput{
		{ProductID: c, Quantity: 1},
		{ProductID: a, Quantity: 2},
		{ProductID: b, Quantity: 3},
	}

	sorted := lockOrder(items)

	assert.Equal(t, []OrderItemInput{
		{ProductID: a, Quantity: 2},
		{ProductID: b, Quantity: 3},
		{ProductID: c, Quantity: 1},
	}, sorted)

	// Input order is preserved for the caller.
	assert.Equal(t, c, items[0].ProductID)
}

func TestMethodReceived(t *testing.T) {
	assert.Equal(t, "dinheiro", methodReceived(models.PaymentMethodCash))
	assert.Equal(t, "pix", methodReceived(models.PaymentMethodPix))
	assert.Equal(t, "cartao", methodReceived(models.PaymentMethodCard))
	assert.Equal(t, "crediario", methodReceived(models.PaymentMethodCrediario))
}

func TestBuildPayments(t *testing.T) {
	engine := NewEngine()
	orderID := uuid.New()
	createdAt := engine.now()

	t.Run("immediate method settles in one paid installment", func(t *testing.T) {
		in := &OrderInput{PaymentMethod: models.PaymentMethodCash}
		payments, err := engine.buildPayments(orderID, 5000, in, createdAt)
		require.NoError(t, err)
		require.Len(t, payments, 1)

		p := payments[0]
		assert.Equal(t, 1, p.InstallmentNumber)
		assert.Equal(t, int64(5000), p.AmountCents)
		assert.Equal(t, models.PaymentStatusPaid, p.Status)
		assert.Equal(t, "dinheiro", p.MethodReceived)
		require.NotNil(t, p.PaymentDate)
		assert.Equal(t, createdAt, *p.PaymentDate)
	})

	t.Run("crediario spaces pending installments 30 days apart", func(t *testing.T) {
		in := &OrderInput{PaymentMethod: models.PaymentMethodCrediario, Installments: 3}
		payments, err := engine.buildPayments(orderID, 1000, in, createdAt)
		require.NoError(t, err)
		require.Len(t, payments, 3)

		var sum int64
		for i, p := range payments {
			assert.Equal(t, i+1, p.InstallmentNumber)
			assert.Equal(t, models.PaymentStatusPending, p.Status)
			assert.Nil(t, p.PaymentDate)
			assert.Empty(t, p.MethodReceived)
			assert.Equal(t, createdAt.Add(time.Duration(i+1)*installmentInterval), p.DueDate)
			sum += p.AmountCents
		}
		assert.Equal(t, int64(1000), sum)
		assert.Equal(t, int64(334), payments[2].AmountCents)
	})
}
