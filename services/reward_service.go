package services

import (
	"context"
	"errors"
	"fmt"

	"flexFitAPI/internal/reward"
)

var (
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrInsufficientPoints = errors.New("not enough flex points")
)

// RewardService serves the static voucher catalog and gates claims on
// the viewer's lifetime flexpoints. The catalog itself carries no
// derived state; only the balance comes from persisted records.
type RewardService struct {
	dashboard *DashboardService
}

func NewRewardService(dashboard *DashboardService) *RewardService {
	return &RewardService{dashboard: dashboard}
}

func (s *RewardService) GetCatalog(ctx context.Context, userID string) (*reward.CatalogResponse, error) {
	_, points, err := s.dashboard.LifetimeTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flexpoints balance: %w", err)
	}

	return &reward.CatalogResponse{
		FlexPoints: points,
		Vouchers:   reward.Vouchers(),
		Prizes:     reward.Prizes(),
	}, nil
}

// ClaimVoucher checks the claim gate. The catalog is static, so a claim
// changes nothing server-side; the check mirrors the client alert flow.
func (s *RewardService) ClaimVoucher(ctx context.Context, userID, voucherID string) (*reward.Voucher, error) {
	v, ok := reward.FindVoucher(voucherID)
	if !ok {
		return nil, ErrVoucherNotFound
	}

	_, points, err := s.dashboard.LifetimeTotals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load flexpoints balance: %w", err)
	}

	if points < v.PointsRequired {
		return nil, ErrInsufficientPoints
	}
	return &v, nil
}
