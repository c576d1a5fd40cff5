package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/talobank/backend/internal/config"
	"github.com/talobank/backend/internal/models"
)

const cardNumberLength = 16 // including the Luhn check digit

// ExistsFunc reports whether a candidate identifier is already taken. Backed
// by the store's existence checks in production, stubbed in tests.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// IssuerService produces collision-checked account and card numbers with
// embedded check digits, plus CVVs and expiry dates for new cards.
type IssuerService struct {
	cfg           *config.EngineConfig
	accountExists ExistsFunc
	cardExists    ExistsFunc

	mu  sync.Mutex
	rng *rand.Rand
}

func NewIssuerService(cfg *config.EngineConfig, accountExists, cardExists ExistsFunc) *IssuerService {
	return &IssuerService{
		cfg:           cfg,
		accountExists: accountExists,
		cardExists:    cardExists,
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AccountNumber generates a unique account number: the 3-digit institution
// code, six random digits, and a weighted check digit.
func (s *IssuerService) AccountNumber(ctx context.Context) (string, error) {
	return s.unique(ctx, s.accountExists, func() string {
		body := s.cfg.InstitutionCode + s.randomDigits(6)
		return body + accountCheckDigit(body)
	})
}

// CardNumber generates a unique 16-digit card number: a type-specific BIN
// prefix, random padding, and a standard Luhn check digit.
func (s *IssuerService) CardNumber(ctx context.Context, cardType string) (string, error) {
	prefix := s.cfg.DebitCardPrefix
	if cardType == models.CardTypeCredit {
		prefix = s.cfg.CreditCardPrefix
	}

	return s.unique(ctx, s.cardExists, func() string {
		body := prefix + s.randomDigits(cardNumberLength-1-len(prefix))
		return body + luhnCheckDigit(body)
	})
}

// CVV generates a 3-digit card verification value.
func (s *IssuerService) CVV() string {
	return s.randomDigits(3)
}

// Expiry computes a new card's expiry date from its creation date.
func (s *IssuerService) Expiry(now time.Time) time.Time {
	return now.AddDate(s.cfg.CardValidityYears, 0, 0)
}

// unique retries generation until the existence check reports no collision.
// The number space is large enough that the loop converges almost immediately
// under any realistic load.
func (s *IssuerService) unique(ctx context.Context, exists ExistsFunc, generate func() string) (string, error) {
	for {
		candidate := generate()
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("uniqueness check failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}

func (s *IssuerService) randomDigits(n int) string {
	const digits = "0123456789"
	s.mu.Lock()
	defer s.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = digits[s.rng.Intn(len(digits))]
	}
	return string(b)
}

// accountCheckDigit computes the account-number check digit: walk the digits
// left to right, double every digit at an even index (subtracting 9 when the
// result exceeds 9), sum, and take the mod-10 complement.
func accountCheckDigit(digits string) string {
	sum := 0
	for i, r := range digits {
		d := int(r - '0')
		if i%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return string(rune('0' + (10-sum%10)%10))
}

// luhnCheckDigit computes the standard Luhn check digit: walk the digits
// right to left, double every second one starting with the rightmost.
func luhnCheckDigit(digits string) string {
	sum := 0
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if (len(digits)-1-i)%2 == 0 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
	}
	return string(rune('0' + (10-sum%10)%10))
}
