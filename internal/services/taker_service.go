package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/orbs-network/twap-go/internal/metrics"
	"github.com/orbs-network/twap-go/internal/models"
)

// TakerService runs the bidding-side poll loop: on each round it reads the
// maker's orders, keeps the ones that are open with source budget remaining,
// and prices the next chunk of each. Pricing outcomes are logged and
// counted; actual bid submission happens out of process.
type TakerService struct {
	twap         *TWAPService
	pollInterval time.Duration
	logger       *logrus.Logger
}

// NewTakerService creates a taker polling at the given interval.
func NewTakerService(twap *TWAPService, pollInterval time.Duration, logger *logrus.Logger) *TakerService {
	return &TakerService{
		twap:         twap,
		pollInterval: pollInterval,
		logger:       logger,
	}
}

// Run polls until ctx is canceled. A failing round is logged and the next
// round proceeds; rounds never overlap.
func (s *TakerService) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.pollInterval).Info("taker loop started")
	for {
		if err := s.runRound(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).Error("bid round failed")
		}
		select {
		case <-ctx.Done():
			s.logger.Info("taker loop stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runRound prices one bidding round across all biddable orders.
func (s *TakerService) runRound(ctx context.Context) error {
	round := uuid.NewString()
	log := s.logger.WithField("round", round)

	orders, err := s.twap.GetAllOrders(ctx)
	if err != nil {
		metrics.BidRounds.WithLabelValues("error").Inc()
		return err
	}

	now := time.Now()
	open := 0
	for i := range orders {
		order := &orders[i]
		if order.StatusAt(now) != models.StatusOpen {
			continue
		}
		open++
		if order.NextBidAmount().Sign() <= 0 {
			continue
		}

		bid, err := s.twap.FindRouteForNextBid(ctx, order)
		if err != nil {
			if errors.Is(err, ErrExchangeMismatch) {
				continue
			}
			log.WithError(err).WithField("order", order.ID).Warn("failed to price next bid")
			continue
		}
		log.WithFields(logrus.Fields{
			"order":     order.ID,
			"srcToken":  bid.SrcToken.Symbol,
			"dstToken":  bid.DstToken.Symbol,
			"srcAmount": bid.SrcAmount.String(),
			"dstAmount": bid.DstAmount.String(),
		}).Info("priced candidate bid")
	}

	metrics.OpenOrders.Set(float64(open))
	metrics.BidRounds.WithLabelValues("ok").Inc()
	return nil
}
