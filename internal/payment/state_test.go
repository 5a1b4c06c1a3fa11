package payment

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapGatewayStatus(t *testing.T) {
	tests := []struct {
		status string
		fraud  string
		want   Status
	}{
		{"capture", "accept", StatusPaid},
		{"capture", "challenge", StatusChallenge},
		{"capture", "deny", StatusFailed},
		{"capture", "", StatusPending},
		{"settlement", "", StatusPaid},
		{"settlement", "challenge", StatusPaid},
		{"deny", "", StatusFailed},
		{"failure", "", StatusFailed},
		{"expire", "", StatusExpired},
		{"cancel", "", StatusCancelled},
		{"pending", "", StatusPending},
		{"refund", "", StatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.fraud, func(t *testing.T) {
			assert.Equal(t, tt.want, MapGatewayStatus(tt.status, tt.fraud))
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusPaid))
	assert.True(t, CanTransition(StatusPending, StatusChallenge))
	assert.True(t, CanTransition(StatusChallenge, StatusPaid))
	assert.True(t, CanTransition(StatusChallenge, StatusExpired))

	assert.False(t, CanTransition(StatusChallenge, StatusPending))
	assert.False(t, CanTransition(StatusPaid, StatusFailed))
	assert.False(t, CanTransition(StatusFailed, StatusPaid))
	assert.False(t, CanTransition(StatusPending, StatusPending))
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusPaid, StatusFailed, StatusExpired, StatusCancelled} {
		assert.True(t, IsTerminal(s), s)
	}
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusChallenge))
}

func TestTransactionPurchasable(t *testing.T) {
	tests := []struct {
		name string
		in   Purchasable
	}{
		{"membership", MembershipPurchase{PackageID: 3}},
		{"class", ClassPurchase{GymClassID: 2, ScheduleID: 5}},
		{"trainer", TrainerPurchase{PackageID: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tx Transaction
			tx.SetPurchasable(tt.in)

			got, err := tx.Purchasable()
			require.NoError(t, err)
			assert.Equal(t, tt.in, got)
			assert.Equal(t, tt.in.Type() == TypeGymClass, tx.GymClassScheduleID != nil)
		})
	}
}

func TestTransactionPurchasable_Corrupt(t *testing.T) {
	_, err := (&Transaction{Code: "TRX-1", PurchasableType: TypeGymClass, PurchasableID: 2}).Purchasable()
	assert.Error(t, err)

	_, err = (&Transaction{Code: "TRX-1", PurchasableType: "voucher"}).Purchasable()
	assert.Error(t, err)
}

func TestCheckoutRequestPurchasable(t *testing.T) {
	_, err := CheckoutRequest{PurchasableType: TypeGymClass, PurchasableID: 2}.Purchasable()
	assert.ErrorIs(t, err, ErrScheduleRequired)

	p, err := CheckoutRequest{PurchasableType: TypeGymClass, PurchasableID: 2, GymClassScheduleID: 5}.Purchasable()
	require.NoError(t, err)
	assert.Equal(t, ClassPurchase{GymClassID: 2, ScheduleID: 5}, p)
}

func TestNewCode(t *testing.T) {
	code := NewCode(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))

	assert.Regexp(t, regexp.MustCompile(`^TRX-20250115-[0-9A-F]{8}$`), code)
	assert.NotEqual(t, code, NewCode(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)))
}
