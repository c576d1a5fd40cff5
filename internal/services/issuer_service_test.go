package services

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/talobank/backend/internal/config"
	"github.com/talobank/backend/internal/models"
)

func neverExists(ctx context.Context, number string) (bool, error) {
	return false, nil
}

// luhnValid is an independent check of the standard Luhn algorithm over a
// complete number, check digit included.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// accountNumberValid re-applies the account weighting (double every digit at
// an even position, left to right) and checks the mod-10 complement.
func accountNumberValid(number string) bool {
	body, check := number[:len(number)-1], int(number[len(number)-1]-'0')
	sum := 0
	for i := range body {
		d := int(body[i] - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return (sum+check)%10 == 0
}

func newTestIssuer(accountExists, cardExists ExistsFunc) *IssuerService {
	svc := NewIssuerService(config.LoadEngineConfig(), accountExists, cardExists)
	svc.rng = rand.New(rand.NewSource(42))
	return svc
}

func TestIssuerService_AccountNumber(t *testing.T) {
	svc := newTestIssuer(neverExists, neverExists)

	for i := 0; i < 50; i++ {
		number, err := svc.AccountNumber(context.Background())
		assert.NoError(t, err)
		assert.Len(t, number, 10)
		assert.True(t, strings.HasPrefix(number, "260"), "number %s should carry the institution code", number)
		assert.True(t, accountNumberValid(number), "check digit of %s should verify", number)
	}
}

func TestIssuerService_CardNumber(t *testing.T) {
	svc := newTestIssuer(neverExists, neverExists)

	t.Run("debit cards carry the debit BIN", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			number, err := svc.CardNumber(context.Background(), models.CardTypeDebit)
			assert.NoError(t, err)
			assert.Len(t, number, 16)
			assert.True(t, strings.HasPrefix(number, "417803"))
			assert.True(t, luhnValid(number), "card %s should pass Luhn", number)
		}
	})

	t.Run("credit cards carry the credit BIN", func(t *testing.T) {
		number, err := svc.CardNumber(context.Background(), models.CardTypeCredit)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(number, "533427"))
		assert.True(t, luhnValid(number))
	})
}

func TestIssuerService_RetriesOnCollision(t *testing.T) {
	calls := 0
	collideTwice := func(ctx context.Context, number string) (bool, error) {
		calls++
		return calls <= 2, nil
	}
	svc := newTestIssuer(collideTwice, neverExists)

	number, err := svc.AccountNumber(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 3, calls, "two collisions should cost exactly two extra attempts")
	assert.True(t, accountNumberValid(number))
}

func TestIssuerService_ExistenceCheckFailure(t *testing.T) {
	broken := func(ctx context.Context, number string) (bool, error) {
		return false, errors.New("db down")
	}
	svc := newTestIssuer(broken, broken)

	_, err := svc.AccountNumber(context.Background())
	assert.Error(t, err)
}

func TestIssuerService_CVVAndExpiry(t *testing.T) {
	svc := newTestIssuer(neverExists, neverExists)

	cvv := svc.CVV()
	assert.Len(t, cvv, 3)
	for _, r := range cvv {
		assert.True(t, r >= '0' && r <= '9')
	}

	issued := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2029, 3, 15, 12, 0, 0, 0, time.UTC), svc.Expiry(issued))
}
