package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/arturoeanton/redcross-volunteers/internal/domain"
	"github.com/arturoeanton/redcross-volunteers/internal/port"
	"go.uber.org/zap"
)

// PledgeRequest is a donation form submission.
type PledgeRequest struct {
	DonorName   string `json:"donor_name"   validate:"required,max=200"`
	DonorEmail  string `json:"donor_email"  validate:"required,email"`
	AmountCents int64  `json:"amount_cents" validate:"gt=0,lte=100000000"`
	Currency    string `json:"currency"     validate:"required,len=3,alpha"`
	Message     string `json:"message"      validate:"max=1000"`
}

// DonationService records pledges. Collecting the money is the payment
// provider's job; pledges stay pending until it reports back.
type DonationService struct {
	store  port.DonationStore
	logger *zap.Logger
}

// NewDonationService creates a new donation service.
func NewDonationService(store port.DonationStore, logger *zap.Logger) *DonationService {
	return &DonationService{store: store, logger: logger.Named("donations")}
}

// Pledge validates and stores a pending donation.
func (s *DonationService) Pledge(ctx context.Context, req PledgeRequest) (*domain.Donation, error) {
	req.DonorName = strings.TrimSpace(req.DonorName)
	req.DonorEmail = strings.ToLower(strings.TrimSpace(req.DonorEmail))
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if err := checkInput(req); err != nil {
		return nil, err
	}

	d, err := s.store.CreateDonation(ctx, &domain.Donation{
		DonorName:   req.DonorName,
		DonorEmail:  req.DonorEmail,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Message:     strings.TrimSpace(req.Message),
		Status:      domain.DonationStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}
	s.logger.Info("donation pledged",
		zap.String("donation_id", d.ID), zap.Int64("amount_cents", d.AmountCents), zap.String("currency", d.Currency))
	return d, nil
}

// List returns the most recent pledges.
func (s *DonationService) List(ctx context.Context, limit int) ([]domain.Donation, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.store.ListDonations(ctx, limit)
}
