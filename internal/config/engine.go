package config

import (
	"os"
	"strconv"
	"time"
)

type EngineConfig struct {
	RetryCeiling         int
	InstitutionCode      string
	DebitCardPrefix      string
	CreditCardPrefix     string
	CardValidityYears    int
	MinPasswordLength    int
	CreditOpeningBalance float64
	CreditCurrency       string
	DebitCurrencies      []string
	BaseCurrency         string
	QuoteCurrencies      []string
	MonthlyInterestRate  float64
	RatesURL             string
	RatesCacheTTL        time.Duration
}

func LoadEngineConfig() *EngineConfig {
	return &EngineConfig{
		RetryCeiling:         getEnvAsInt("ENGINE_RETRY_CEILING", 3),
		InstitutionCode:      getEnv("ENGINE_INSTITUTION_CODE", "260"),
		DebitCardPrefix:      getEnv("ENGINE_DEBIT_CARD_PREFIX", "417803"),
		CreditCardPrefix:     getEnv("ENGINE_CREDIT_CARD_PREFIX", "533427"),
		CardValidityYears:    getEnvAsInt("ENGINE_CARD_VALIDITY_YEARS", 3),
		MinPasswordLength:    getEnvAsInt("ENGINE_MIN_PASSWORD_LENGTH", 8),
		CreditOpeningBalance: getEnvAsFloat("ENGINE_CREDIT_OPENING_BALANCE", 10000),
		CreditCurrency:       getEnv("ENGINE_CREDIT_CURRENCY", "UAH"),
		DebitCurrencies:      []string{"UAH", "USD", "EUR"},
		BaseCurrency:         getEnv("ENGINE_BASE_CURRENCY", "EUR"),
		QuoteCurrencies:      []string{"USD", "UAH"},
		MonthlyInterestRate:  getEnvAsFloat("ENGINE_MONTHLY_INTEREST_RATE", 0.05),
		RatesURL:             getEnv("ENGINE_RATES_URL", "https://api.talobank.dev/rates"),
		RatesCacheTTL:        getEnvAsDuration("ENGINE_RATES_CACHE_TTL", 10*time.Minute),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if floatVal, err := strconv.ParseFloat(val, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultVal
}
