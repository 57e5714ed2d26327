package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/commerce-system/internal/core/domain"
	"github.com/storefront/commerce-system/internal/core/ports"
)

// UserService implements account administration and deposit management.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// Delete removes a user account. Administrator accounts are protected and
// cannot be deleted through this path.
func (s *UserService) Delete(ctx context.Context, id int64) (int64, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	if user.IsAdmin() {
		return 0, domain.ErrForbidden
	}

	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	s.log.Info().Int64("user_id", id).Int64("rows", rows).Msg("user deleted")
	return rows, nil
}

func (s *UserService) UpdateRole(ctx context.Context, id int64, role string) error {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return domain.ErrInvalidRole
	}

	rows, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}

	s.log.Info().Int64("user_id", id).Str("role", role).Msg("role updated")
	return nil
}

// AddDeposit credits the user's balance and returns the refreshed account.
func (s *UserService) AddDeposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.User, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	rows, err := s.repo.AdjustDeposit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, domain.ErrUserNotFound
	}

	return s.repo.FindByID(ctx, userID)
}

// SubtractDeposit debits the user's balance. The repository guard refuses a
// debit that would take the balance below zero.
func (s *UserService) SubtractDeposit(ctx context.Context, userID int64, amount decimal.Decimal) (*domain.User, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	rows, err := s.repo.AdjustDeposit(ctx, userID, amount.Neg())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Guard rejection and a missing user both report zero rows; a fresh
		// read tells them apart.
		if _, findErr := s.repo.FindByID(ctx, userID); findErr != nil {
			if errors.Is(findErr, domain.ErrUserNotFound) {
				return nil, domain.ErrUserNotFound
			}
			return nil, findErr
		}
		return nil, domain.ErrInsufficientDeposit
	}

	return s.repo.FindByID(ctx, userID)
}
