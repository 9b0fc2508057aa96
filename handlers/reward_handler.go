package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"flexFitAPI/middleware"
	"flexFitAPI/services"
)

type RewardHandler struct {
	rewardService *services.RewardService
}

func NewRewardHandler(rewardService *services.RewardService) *RewardHandler {
	return &RewardHandler{
		rewardService: rewardService,
	}
}

func (h *RewardHandler) GetRewards(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	catalog, err := h.rewardService.GetCatalog(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load rewards")
		return
	}

	respondWithJSON(w, http.StatusOK, catalog)
}

func (h *RewardHandler) ClaimVoucher(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var body struct {
		VoucherID string `json:"voucherId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.VoucherID == "" {
		respondWithError(w, http.StatusBadRequest, "voucherId is required")
		return
	}

	voucher, err := h.rewardService.ClaimVoucher(ctx, clerkID, body.VoucherID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVoucherNotFound):
			respondWithError(w, http.StatusNotFound, "Voucher not found")
		case errors.Is(err, services.ErrInsufficientPoints):
			respondWithError(w, http.StatusForbidden, "You don't have enough flex points")
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to claim voucher")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Voucher claimed successfully",
		"voucher": voucher,
	})
}
