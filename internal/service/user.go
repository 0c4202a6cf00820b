package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"leftoverapi/internal/model"
	"leftoverapi/internal/repository"
)

var (
	ErrDuplicateUser = errors.New("user with this name and phone number already exists")
	ErrUserNotFound  = errors.New("user not found")
)

// TokenTypeBearer is the token_type returned with every access token.
const TokenTypeBearer = "bearer"

// RegisterInput is the payload for creating a user.
type RegisterInput struct {
	Name      string  `json:"name" validate:"required,max=100"`
	PhoneNum  string  `json:"phoneNum" validate:"required,max=20"`
	AccountID *string `json:"accountId" validate:"omitempty,max=100"`
}

// LoginInput identifies a user by phone number alone.
type LoginInput struct {
	PhoneNum string `json:"phoneNum" validate:"required,max=20"`
}

// NameLoginInput identifies a user by name and phone number.
type NameLoginInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	PhoneNum string `json:"phoneNum" validate:"required,max=20"`
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// TokenIssuer signs access tokens for a user id.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// UserService defines account use cases.
type UserService interface {
	// Register creates a user. The (name, phoneNum) pair must be unused.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)

	// Login issues a token for the earliest user registered with the phone number.
	Login(ctx context.Context, in LoginInput) (*Token, error)

	// LoginWithName issues a token for the user matching both name and phone number.
	LoginWithName(ctx context.Context, in NameLoginInput) (*Token, error)

	// Info returns the stored profile of userID.
	Info(ctx context.Context, userID int64) (*model.User, error)
}

type userService struct {
	repo   repository.UserRepository
	tokens TokenIssuer
}

// NewUserService constructs a new UserService.
func NewUserService(repo repository.UserRepository, tokens TokenIssuer) UserService {
	return &userService{repo: repo, tokens: tokens}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNum = strings.TrimSpace(in.PhoneNum)
	if in.AccountID != nil && strings.TrimSpace(*in.AccountID) == "" {
		in.AccountID = nil
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, &model.User{
		Name:      in.Name,
		PhoneNum:  in.PhoneNum,
		AccountID: in.AccountID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*Token, error) {
	in.PhoneNum = strings.TrimSpace(in.PhoneNum)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.repo.FindFirstByPhone(ctx, in.PhoneNum)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	return s.issue(u.ID)
}

func (s *userService) LoginWithName(ctx context.Context, in NameLoginInput) (*Token, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNum = strings.TrimSpace(in.PhoneNum)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.repo.FindByNameAndPhone(ctx, in.Name, in.PhoneNum)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	return s.issue(u.ID)
}

func (s *userService) Info(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.lookupErr(err)
	}
	return u, nil
}

func (s *userService) issue(userID int64) (*Token, error) {
	tok, err := s.tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &Token{AccessToken: tok, TokenType: TokenTypeBearer}, nil
}

func (s *userService) lookupErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return fmt.Errorf("find user: %w", err)
}
