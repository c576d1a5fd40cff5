package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/talobank/backend/internal/services"
	"github.com/talobank/backend/internal/store"
)

// AdminHandler exposes the administrative listings over the JWT-guarded API.
type AdminHandler struct {
	store     *store.Store
	validator *services.ValidationHelper
}

func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{
		store:     st,
		validator: services.NewValidationHelper(),
	}
}

type adminLoginRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	Password    string `json:"password" validate:"required"`
}

// Login authenticates an admin party and issues a bearer token.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req adminLoginRequest
	if err := dec.Decode(&req); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	party, err := h.store.PartyByPhone(r.Context(), req.PhoneNumber)
	if err != nil || !party.IsAdmin || !services.VerifyPassword(req.Password, party.PasswordHash) {
		log.Printf("[ADMIN] Login rejected for %s", req.PhoneNumber)
		services.SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}

	token, err := generateJWT(party.ID)
	if err != nil {
		services.SendErrorResponse(w, "Failed to generate token", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (h *AdminHandler) ListParties(w http.ResponseWriter, r *http.Request) {
	parties, err := h.store.ListParties(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "Listing failed", http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(parties)
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.store.ListAccounts(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "Listing failed", http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

func (h *AdminHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.store.ListCards(r.Context())
	if err != nil {
		services.SendErrorResponse(w, "Listing failed", http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(cards)
}

func (h *AdminHandler) ListLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ListLedger(r.Context(), 100)
	if err != nil {
		services.SendErrorResponse(w, "Listing failed", http.StatusInternalServerError, nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

func generateJWT(partyID int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": partyID,
		"exp":     time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})
	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}
