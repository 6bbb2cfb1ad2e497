package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pribylovaa/campus-match/internal/config"
	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/storage"
	"github.com/pribylovaa/campus-match/mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testCfg() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "unit-secret",
			AccessTokenTTL: 30 * time.Second,
			Issuer:         "campus-match",
			Audience:       []string{"campus-match-web"},
			EmailDomain:    "kiit.ac.in",
		},
		OTP: config.OTPConfig{
			TTL:        15 * time.Minute,
			CodeLength: 6,
		},
		Limits: config.LimitsConfig{
			ScoreThreshold: 60,
			QuestionCount:  10,
		},
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockOTPCache, *mocks.MockMailer, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	otp := mocks.NewMockOTPCache(ctrl)
	mail := mocks.NewMockMailer(ctrl)
	svc := New(st, otp, mail, testCfg())
	return svc, st, otp, mail, ctrl
}

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestCheckAvailability_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").Return(nil, storage.ErrNotFound)
	st.EXPECT().UserByPhone(gomock.Any(), "9876543210").Return(nil, storage.ErrNotFound)

	err := svc.CheckAvailability(context.Background(), CheckAvailabilityInput{
		Email:       "21051234@kiit.ac.in",
		PhoneNumber: "9876543210",
	})
	require.NoError(t, err)
}

func TestCheckAvailability_NonInstitutionalEmail(t *testing.T) {
	t.Parallel()

	svc, _, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	for _, email := range []string{"user@gmail.com", "user@kiit.ac.in", "@kiit.ac.in", "21051234@kiit.ac.in.evil.com", ""} {
		err := svc.CheckAvailability(context.Background(), CheckAvailabilityInput{
			Email:       email,
			PhoneNumber: "9876543210",
		})
		require.ErrorIs(t, err, ErrInvalidArgument, "email=%q", email)
	}
}

func TestCheckAvailability_InvalidPhone(t *testing.T) {
	t.Parallel()

	svc, _, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	for _, phone := range []string{"", "12345", "98765432100", "98765email", "+919876543210"} {
		err := svc.CheckAvailability(context.Background(), CheckAvailabilityInput{
			Email:       "21051234@kiit.ac.in",
			PhoneNumber: phone,
		})
		require.ErrorIs(t, err, ErrInvalidArgument, "phone=%q", phone)
	}
}

func TestCheckAvailability_EmailTaken(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").
		Return(&models.User{ID: "u1"}, nil)

	err := svc.CheckAvailability(context.Background(), CheckAvailabilityInput{
		Email:       "21051234@kiit.ac.in",
		PhoneNumber: "9876543210",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestCheckAvailability_PhoneTaken(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").Return(nil, storage.ErrNotFound)
	st.EXPECT().UserByPhone(gomock.Any(), "9876543210").
		Return(&models.User{ID: "u2"}, nil)

	err := svc.CheckAvailability(context.Background(), CheckAvailabilityInput{
		Email:       "21051234@kiit.ac.in",
		PhoneNumber: "9876543210",
	})
	require.ErrorIs(t, err, ErrPhoneTaken)
}

func TestRegisterUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").Return(nil, storage.ErrNotFound)
	st.EXPECT().UserByPhone(gomock.Any(), "9876543210").Return(nil, storage.ErrNotFound)
	st.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u models.User) (*models.User, error) {
			require.Equal(t, "alice", u.Username)
			require.Equal(t, "21051234@kiit.ac.in", u.Email)
			require.True(t, u.IsVerified)
			require.False(t, u.IsOnline)
			require.Empty(t, u.Answers)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("Abcdef1!")))
			u.ID = "6650deadbeefdeadbeefdead"
			return &u, nil
		})

	created, err := svc.RegisterUser(context.Background(), RegisterInput{
		Username:    " alice ",
		Email:       "21051234@KIIT.ac.in",
		PhoneNumber: "9876543210",
		Gender:      models.GenderFemale,
		Password:    "Abcdef1!",
	})
	require.NoError(t, err)
	require.Equal(t, "6650deadbeefdeadbeefdead", created.ID)
}

func TestRegisterUser_InvalidInputs(t *testing.T) {
	t.Parallel()

	svc, _, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	valid := RegisterInput{
		Username:    "alice",
		Email:       "21051234@kiit.ac.in",
		PhoneNumber: "9876543210",
		Gender:      models.GenderFemale,
		Password:    "Abcdef1!",
	}

	cases := []struct {
		name   string
		mutate func(in *RegisterInput)
	}{
		{"empty_username", func(in *RegisterInput) { in.Username = "  " }},
		{"bad_email", func(in *RegisterInput) { in.Email = "alice@kiit.ac.in" }},
		{"bad_phone", func(in *RegisterInput) { in.PhoneNumber = "1234" }},
		{"bad_gender", func(in *RegisterInput) { in.Gender = "other" }},
		{"empty_password", func(in *RegisterInput) { in.Password = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := svc.RegisterUser(context.Background(), in)
			require.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestRegisterUser_RaceOnInsert(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
	st.EXPECT().UserByPhone(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
	st.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrAlreadyExists)

	_, err := svc.RegisterUser(context.Background(), RegisterInput{
		Username:    "alice",
		Email:       "21051234@kiit.ac.in",
		PhoneNumber: "9876543210",
		Gender:      models.GenderFemale,
		Password:    "Abcdef1!",
	})
	require.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLoginUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           "u1",
		Email:        "21051234@kiit.ac.in",
		PasswordHash: mustHashPW(t, "Abcdef1!"),
	}

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").Return(user, nil)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			require.True(t, u.IsOnline)
			return nil
		})

	res, err := svc.LoginUser(context.Background(), "21051234@kiit.ac.in", "Abcdef1!")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.WithinDuration(t, time.Now().Add(svc.cfg.Auth.AccessTokenTTL), res.ExpiresAt, 2*time.Second)
	require.True(t, res.User.IsOnline)

	uid, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "u1", uid)
}

func TestLoginUser_AlreadyOnlineSkipsSave(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           "u1",
		Email:        "21051234@kiit.ac.in",
		PasswordHash: mustHashPW(t, "Abcdef1!"),
		IsOnline:     true,
	}

	// SaveUser не ожидается: флаг уже выставлен.
	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").Return(user, nil)

	res, err := svc.LoginUser(context.Background(), "21051234@kiit.ac.in", "Abcdef1!")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
}

func TestLoginUser_WrongPassword(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           "u1",
		Email:        "21051234@kiit.ac.in",
		PasswordHash: mustHashPW(t, "Abcdef1!"),
	}

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").Return(user, nil)

	_, err := svc.LoginUser(context.Background(), "21051234@kiit.ac.in", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUser_UnknownEmail(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)

	_, err := svc.LoginUser(context.Background(), "21051234@kiit.ac.in", "Abcdef1!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUser_StorageError(t *testing.T) {
	t.Parallel()

	svc, st, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("mongo down"))

	_, err := svc.LoginUser(context.Background(), "21051234@kiit.ac.in", "Abcdef1!")
	require.ErrorIs(t, err, ErrInternal)
}
