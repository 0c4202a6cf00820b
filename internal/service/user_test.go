package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"leftoverapi/internal/model"
	"leftoverapi/internal/repository"
	repoMocks "leftoverapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(userID int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("token-%d", userID), nil
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	acct := "acct-1"
	blank := "  "

	tests := []struct {
		name       string
		in         RegisterInput
		setupMocks func(mRepo *repoMocks.MockUserRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path trims input",
			in:   RegisterInput{Name: " Kim ", PhoneNum: "010-1111-2222 ", AccountID: &acct},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.Name == "Kim" && u.PhoneNum == "010-1111-2222" && u.AccountID != nil && *u.AccountID == acct
				})).Return(&model.User{ID: 1, Name: "Kim"}, nil)
			},
		},
		{
			name: "blank account id stored as null",
			in:   RegisterInput{Name: "Kim", PhoneNum: "010", AccountID: &blank},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("Create", ctx, mock.MatchedBy(func(u *model.User) bool {
					return u.AccountID == nil
				})).Return(&model.User{ID: 2}, nil)
			},
		},
		{
			name:       "missing phone",
			in:         RegisterInput{Name: "Kim"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrValidation,
			wantErrMsg: "phoneNum is required",
		},
		{
			name:       "phone too long",
			in:         RegisterInput{Name: "Kim", PhoneNum: "0123456789012345678901"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {},
			wantErr:    ErrValidation,
			wantErrMsg: "phoneNum must be at most 20 characters",
		},
		{
			name: "duplicate",
			in:   RegisterInput{Name: "Kim", PhoneNum: "010"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicate)
			},
			wantErr: ErrDuplicateUser,
		},
		{
			name: "repository failure",
			in:   RegisterInput{Name: "Kim", PhoneNum: "010"},
			setupMocks: func(mRepo *repoMocks.MockUserRepository) {
				mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("conn reset"))
			},
			wantErrMsg: "create user: conn reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockUserRepository)
			tt.setupMocks(mRepo)
			svc := NewUserService(mRepo, stubIssuer{})

			u, err := svc.Register(ctx, tt.in)
			if tt.wantErr == nil && tt.wantErrMsg == "" {
				require.NoError(t, err)
				assert.NotNil(t, u)
			} else {
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.wantErrMsg != "" {
					assert.ErrorContains(t, err, tt.wantErrMsg)
				}
				assert.Nil(t, u)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("phone only", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindFirstByPhone", ctx, "010").Return(&model.User{ID: 3}, nil)

		tok, err := NewUserService(mRepo, stubIssuer{}).Login(ctx, LoginInput{PhoneNum: " 010 "})
		require.NoError(t, err)
		assert.Equal(t, "token-3", tok.AccessToken)
		assert.Equal(t, TokenTypeBearer, tok.TokenType)
		mRepo.AssertExpectations(t)
	})

	t.Run("unknown phone", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindFirstByPhone", ctx, "999").Return(nil, sql.ErrNoRows)

		_, err := NewUserService(mRepo, stubIssuer{}).Login(ctx, LoginInput{PhoneNum: "999"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("empty phone", func(t *testing.T) {
		_, err := NewUserService(new(repoMocks.MockUserRepository), stubIssuer{}).Login(ctx, LoginInput{})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("with name", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByNameAndPhone", ctx, "Kim", "010").Return(&model.User{ID: 4}, nil)

		tok, err := NewUserService(mRepo, stubIssuer{}).LoginWithName(ctx, NameLoginInput{Name: "Kim", PhoneNum: "010"})
		require.NoError(t, err)
		assert.Equal(t, "token-4", tok.AccessToken)
	})

	t.Run("with name mismatch", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindByNameAndPhone", ctx, "Lee", "010").Return(nil, sql.ErrNoRows)

		_, err := NewUserService(mRepo, stubIssuer{}).LoginWithName(ctx, NameLoginInput{Name: "Lee", PhoneNum: "010"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("issuer failure", func(t *testing.T) {
		mRepo := new(repoMocks.MockUserRepository)
		mRepo.On("FindFirstByPhone", ctx, "010").Return(&model.User{ID: 3}, nil)

		_, err := NewUserService(mRepo, stubIssuer{err: errors.New("no key")}).Login(ctx, LoginInput{PhoneNum: "010"})
		assert.ErrorContains(t, err, "issue token: no key")
	})
}

func TestUserService_Info(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockUserRepository)
	mRepo.On("FindByID", ctx, int64(7)).Return(&model.User{ID: 7, Name: "Park", MeasureCnt: 2}, nil)
	mRepo.On("FindByID", ctx, int64(8)).Return(nil, sql.ErrNoRows)
	mRepo.On("FindByID", ctx, int64(9)).Return(nil, errors.New("timeout"))
	svc := NewUserService(mRepo, stubIssuer{})

	u, err := svc.Info(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, u.MeasureCnt)

	_, err = svc.Info(ctx, 8)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Info(ctx, 9)
	assert.ErrorContains(t, err, "find user: timeout")
}
