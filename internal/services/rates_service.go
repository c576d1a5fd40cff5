package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/talobank/backend/internal/config"
)

const ratesCacheKey = "rates:table"

// ErrRateUnavailable is surfaced to the party as a "try again later"
// condition: the upstream table could not be fetched or lacks a currency.
var ErrRateUnavailable = errors.New("exchange rate unavailable")

// rateTable maps currency code to its value in units per one unit of the base
// currency. The base itself is implicit (1.0).
type rateTable map[string]float64

type ratesPayload struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// RatesService fetches the upstream exchange-rate table, caches it in Redis,
// and triangulates pairwise conversion rates from it.
type RatesService struct {
	client *http.Client
	redis  *redis.Client
	cfg    *config.EngineConfig
}

func NewRatesService(redisClient *redis.Client, cfg *config.EngineConfig) *RatesService {
	return &RatesService{
		client: &http.Client{Timeout: 10 * time.Second},
		redis:  redisClient,
		cfg:    cfg,
	}
}

// Rate returns the conversion rate from one currency to another, or
// ErrRateUnavailable when the table cannot be fetched or lacks a currency.
func (s *RatesService) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	table, err := s.table(ctx)
	if err != nil {
		log.Printf("[RATES] Table unavailable: %v", err)
		return 0, ErrRateUnavailable
	}

	fromValue, ok := s.lookup(table, from)
	if !ok {
		return 0, ErrRateUnavailable
	}
	toValue, ok := s.lookup(table, to)
	if !ok {
		return 0, ErrRateUnavailable
	}

	return toValue / fromValue, nil
}

// Summary renders the six pairwise rates among the base and quote currencies
// with two-decimal precision.
func (s *RatesService) Summary(ctx context.Context) (string, error) {
	currencies := append([]string{s.cfg.BaseCurrency}, s.cfg.QuoteCurrencies...)

	var b strings.Builder
	b.WriteString("Current exchange rates:\n")
	for _, from := range currencies {
		for _, to := range currencies {
			if from == to {
				continue
			}
			rate, err := s.Rate(ctx, from, to)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "1 %s = %.2f %s\n", from, rate, to)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// lookup resolves a currency's table value, substituting 1.0 for the base.
func (s *RatesService) lookup(table rateTable, currency string) (float64, bool) {
	if currency == s.cfg.BaseCurrency {
		return 1.0, true
	}
	value, ok := table[currency]
	if !ok || value == 0 {
		return 0, false
	}
	return value, true
}

func (s *RatesService) table(ctx context.Context) (rateTable, error) {
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, ratesCacheKey).Result(); err == nil {
			var table rateTable
			if err := json.Unmarshal([]byte(cached), &table); err == nil {
				return table, nil
			}
		} else if err != redis.Nil {
			log.Printf("[RATES] Cache read failed: %v", err)
		}
	}

	table, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(table); err == nil {
			if err := s.redis.Set(ctx, ratesCacheKey, data, s.cfg.RatesCacheTTL).Err(); err != nil {
				log.Printf("[RATES] Cache write failed: %v", err)
			}
		}
	}

	return table, nil
}

func (s *RatesService) fetch(ctx context.Context) (rateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.RatesURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("rate decode failed: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, errors.New("rate source returned an empty table")
	}

	return payload.Rates, nil
}
