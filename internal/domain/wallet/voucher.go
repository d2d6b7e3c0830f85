package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
	"github.com/learnhub/learnhub-api/internal/pkg/lock"
	"github.com/learnhub/learnhub-api/internal/pkg/money"
	"github.com/learnhub/learnhub-api/internal/pkg/voucher"
)

// VoucherProvider redeems a voucher code with the external provider.
type VoucherProvider interface {
	Redeem(ctx context.Context, code string) (*voucher.Result, error)
}

const reconcileBatch = 100

func voucherReference(code string) string {
	return voucherRefPrefix + code
}

// RedeemVoucher claims a voucher with the provider and credits its value.
//
// The redemption row is written as PENDING before the provider is called and
// moves to CONFIRMED once the provider accepts. Crediting the ledger is a
// separate transaction that flips the row to CREDITED, so a crash in between
// leaves a CONFIRMED row for ReconcileVouchers.
func (s *Service) RedeemVoucher(ctx context.Context, userID uuid.UUID, link string) (*DepositResult, error) {
	code, err := voucher.ParseCode(link)
	if err != nil {
		return nil, ErrInvalidVoucher
	}

	release, err := s.locker.Acquire(ctx, "voucher:"+code)
	switch {
	case errors.Is(err, lock.ErrHeld):
		return nil, ErrVoucherInProgress
	case err != nil:
		log.Warn().Err(err).Str("voucher_code", code).Msg("voucher lock unavailable")
	default:
		defer release()
	}

	red, err := s.claimRedemption(ctx, userID, code)
	if err != nil {
		return nil, err
	}

	if red.Status != RedemptionConfirmed {
		if err := s.confirmWithProvider(ctx, red); err != nil {
			return nil, err
		}
	}

	return s.creditRedemption(ctx, red.Code)
}

// claimRedemption creates the PENDING row, or reopens a retryable one owned by userID.
func (s *Service) claimRedemption(ctx context.Context, userID uuid.UUID, code string) (*Redemption, error) {
	var claimed *Redemption

	err := s.repo.InTx(ctx, func(repo Repository) error {
		red, err := repo.LockRedemption(ctx, code)
		if err != nil {
			return err
		}
		now := s.now()

		if red == nil {
			red = &Redemption{
				ID:        uuid.New(),
				UserID:    userID,
				Code:      code,
				Status:    RedemptionPending,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := repo.CreateRedemption(ctx, red); err != nil {
				return err
			}
			claimed = red
			return nil
		}

		if red.UserID != userID || red.Status == RedemptionCredited {
			return ErrVoucherAlreadyRedeemed
		}
		if red.Status != RedemptionConfirmed {
			red.Status = RedemptionPending
			red.ProviderCode = nil
			red.ProviderMessage = nil
			red.UpdatedAt = now
			if err := repo.UpdateRedemption(ctx, red); err != nil {
				return err
			}
		}
		claimed = red
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// confirmWithProvider calls the provider outside any transaction and records the outcome on red.
func (s *Service) confirmWithProvider(ctx context.Context, red *Redemption) error {
	res, err := s.vouchers.Redeem(ctx, red.Code)
	if err != nil {
		var perr *voucher.ProviderError
		if errors.As(err, &perr) {
			s.failRedemption(ctx, red, perr.Code, perr.Message)
			return apperror.BadRequest(perr.Code, perr.Message)
		}
		// outcome unknown: the row stays PENDING and the user may retry
		log.Error().Err(err).Str("voucher_code", red.Code).Msg("voucher provider call failed")
		return ErrVoucherProviderUnavailable
	}

	if res.AmountMinor <= 0 {
		s.failRedemption(ctx, red, ErrVoucherEmpty.Code, ErrVoucherEmpty.Message)
		return ErrVoucherEmpty
	}

	amount := res.AmountMinor
	red.Status = RedemptionConfirmed
	red.AmountMinor = &amount
	red.UpdatedAt = s.now()
	if err := s.repo.UpdateRedemption(ctx, red); err != nil {
		log.Error().Err(err).Str("voucher_code", red.Code).Int64("amount_minor", amount).
			Msg("voucher confirmed by provider but not recorded")
		return err
	}

	log.Info().
		Str("user_id", red.UserID.String()).
		Str("voucher_code", red.Code).
		Int64("amount_minor", amount).
		Msg("voucher confirmed by provider")
	return nil
}

func (s *Service) failRedemption(ctx context.Context, red *Redemption, code, message string) {
	red.Status = RedemptionFailed
	red.ProviderCode = &code
	red.ProviderMessage = &message
	red.UpdatedAt = s.now()
	if err := s.repo.UpdateRedemption(ctx, red); err != nil {
		log.Error().Err(err).Str("voucher_code", red.Code).Msg("failed to record voucher failure")
	}
}

// creditRedemption deposits a CONFIRMED voucher and marks it CREDITED in one transaction.
// An already CREDITED row returns its original transaction.
func (s *Service) creditRedemption(ctx context.Context, code string) (*DepositResult, error) {
	var result *DepositResult

	err := s.repo.InTx(ctx, func(repo Repository) error {
		red, err := repo.LockRedemption(ctx, code)
		if err != nil {
			return err
		}
		if red == nil {
			return ErrInvalidVoucher
		}

		balance, found, err := repo.LockBalance(ctx, red.UserID)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}

		ref := voucherReference(code)
		if red.Status == RedemptionCredited {
			t, err := repo.FindTransactionByReference(ctx, red.UserID, ref)
			if err != nil {
				return err
			}
			result = &DepositResult{Transaction: t, Balance: balance}
			return nil
		}
		if red.Status != RedemptionConfirmed || red.AmountMinor == nil {
			return ErrVoucherProviderUnavailable
		}

		amount := money.FromMinor(*red.AmountMinor)
		t, next, err := s.credit(ctx, repo, red.UserID, balance, amount, ProviderVoucher, "Voucher redemption "+code, ref)
		if err != nil {
			return err
		}

		red.Status = RedemptionCredited
		red.TransactionID = uuid.NullUUID{UUID: t.ID, Valid: true}
		red.UpdatedAt = s.now()
		if err := repo.UpdateRedemption(ctx, red); err != nil {
			return err
		}

		result = &DepositResult{Transaction: t, Balance: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReconcileVouchers credits every CONFIRMED redemption that has not reached the ledger.
// It returns how many were credited.
func (s *Service) ReconcileVouchers(ctx context.Context) (int, error) {
	pending, err := s.repo.ListConfirmedRedemptions(ctx, reconcileBatch)
	if err != nil {
		return 0, err
	}

	credited := 0
	for _, red := range pending {
		if _, err := s.creditRedemption(ctx, red.Code); err != nil {
			log.Error().Err(err).Str("voucher_code", red.Code).Msg("voucher reconcile failed")
			continue
		}
		credited++
	}

	if len(pending) > 0 {
		log.Info().Int("confirmed", len(pending)).Int("credited", credited).Msg("voucher reconcile finished")
	}
	return credited, nil
}
