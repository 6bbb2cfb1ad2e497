package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

func TestSendEmailOTP_OK(t *testing.T) {
	t.Parallel()

	svc, _, otp, mail, ctrl := newSvc(t)
	defer ctrl.Finish()

	var sentCode string

	otp.EXPECT().Set(gomock.Any(), "21051234@kiit.ac.in", gomock.Any(), 15*time.Minute).
		DoAndReturn(func(_ context.Context, _, code string, _ time.Duration) error {
			require.Len(t, code, 6)
			for _, r := range code {
				require.True(t, r >= '0' && r <= '9')
			}
			sentCode = code
			return nil
		})
	mail.EXPECT().SendOTP(gomock.Any(), "21051234@kiit.ac.in", gomock.Any(), 15*time.Minute).
		DoAndReturn(func(_ context.Context, _, code string, _ time.Duration) error {
			require.Equal(t, sentCode, code)
			return nil
		})

	err := svc.SendEmailOTP(context.Background(), "21051234@KIIT.ac.in")
	require.NoError(t, err)
}

func TestSendEmailOTP_InvalidEmail(t *testing.T) {
	t.Parallel()

	svc, _, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	err := svc.SendEmailOTP(context.Background(), "user@gmail.com")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSendEmailOTP_CacheError(t *testing.T) {
	t.Parallel()

	svc, _, otp, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	otp.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("redis down"))

	err := svc.SendEmailOTP(context.Background(), "21051234@kiit.ac.in")
	require.ErrorIs(t, err, ErrInternal)
}

func TestSendEmailOTP_MailError(t *testing.T) {
	t.Parallel()

	svc, _, otp, mail, ctrl := newSvc(t)
	defer ctrl.Finish()

	otp.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	mail.EXPECT().SendOTP(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("mailtrap 500"))

	err := svc.SendEmailOTP(context.Background(), "21051234@kiit.ac.in")
	require.ErrorIs(t, err, ErrInternal)
}

func TestVerifyEmailOTP_OK(t *testing.T) {
	t.Parallel()

	svc, _, otp, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	otp.EXPECT().Get(gomock.Any(), "21051234@kiit.ac.in").Return("123456", true, nil)
	otp.EXPECT().Del(gomock.Any(), "21051234@kiit.ac.in").Return(nil)

	err := svc.VerifyEmailOTP(context.Background(), "21051234@kiit.ac.in", " 123456 ")
	require.NoError(t, err)
}

func TestVerifyEmailOTP_NotFound(t *testing.T) {
	t.Parallel()

	svc, _, otp, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	otp.EXPECT().Get(gomock.Any(), "21051234@kiit.ac.in").Return("", false, nil)

	err := svc.VerifyEmailOTP(context.Background(), "21051234@kiit.ac.in", "123456")
	require.ErrorIs(t, err, ErrOTPNotFound)
}

func TestVerifyEmailOTP_Mismatch(t *testing.T) {
	t.Parallel()

	svc, _, otp, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	// Код остаётся в кэше: Del не ожидается.
	otp.EXPECT().Get(gomock.Any(), "21051234@kiit.ac.in").Return("123456", true, nil)

	err := svc.VerifyEmailOTP(context.Background(), "21051234@kiit.ac.in", "654321")
	require.ErrorIs(t, err, ErrOTPMismatch)
}

func TestVerifyEmailOTP_EmptyCode(t *testing.T) {
	t.Parallel()

	svc, _, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	err := svc.VerifyEmailOTP(context.Background(), "21051234@kiit.ac.in", "  ")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateCode_LengthAndCharset(t *testing.T) {
	t.Parallel()

	for _, n := range []int{4, 6, 10} {
		code, err := generateCode(n)
		require.NoError(t, err)
		require.Len(t, code, n)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9')
		}
	}
}
