package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Register(ctx context.Context, email, password, name string) (*User, string, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error)
	CreateAddress(ctx context.Context, a *Address) (*Address, error)
}

type service struct {
	repo   Repository
	tokens *TokenIssuer
}

func NewService(repo Repository, tokens *TokenIssuer) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, email, password, name string) (*User, string, error) {
	if password == "" {
		return nil, "", errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, "", fmt.Errorf("service: failed to hash password: %w", err)
	}

	u := &User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return nil, "", ErrEmailExists
		}
		log.Error().Err(err).Msg("service: failed to create user in repository")
		return nil, "", fmt.Errorf("service: failed to save user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("service: failed to issue token")
		return nil, "", fmt.Errorf("service: failed to issue token: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Msg("User registered")
	return u, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("service: failed to get user by email")
		return nil, "", fmt.Errorf("service: failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("service: failed to issue token")
		return nil, "", fmt.Errorf("service: failed to issue token: %w", err)
	}

	return u, token, nil
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to get user by id")
		return nil, fmt.Errorf("service: failed to get user by id: %w", err)
	}

	return u, nil
}

func (s *service) UpdateUser(ctx context.Context, u *User) error {
	err := s.repo.Update(ctx, u)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailExists) {
			return err
		}
		log.Error().Err(err).Stringer("user_id", u.ID).Msg("service: failed to update user")
		return fmt.Errorf("service: failed to update user: %w", err)
	}

	return nil
}

func (s *service) ListAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to list addresses")
		return nil, fmt.Errorf("service: failed to list addresses: %w", err)
	}

	return addresses, nil
}

func (s *service) CreateAddress(ctx context.Context, a *Address) (*Address, error) {
	if err := s.repo.CreateAddress(ctx, a); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", a.UserID).Msg("service: failed to create address")
		return nil, fmt.Errorf("service: failed to create address: %w", err)
	}

	return a, nil
}
