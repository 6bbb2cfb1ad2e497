package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pribylovaa/campus-match/internal/config"
	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/service"
	"github.com/pribylovaa/campus-match/internal/storage"
	"github.com/pribylovaa/campus-match/mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func routerCfg() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:      "router-secret",
			AccessTokenTTL: time.Minute,
			Issuer:         "campus-match",
			Audience:       []string{"campus-match-web"},
			EmailDomain:    "kiit.ac.in",
		},
		OTP:    config.OTPConfig{TTL: 15 * time.Minute, CodeLength: 6},
		Limits: config.LimitsConfig{ScoreThreshold: 60, QuestionCount: 10},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	otp := mocks.NewMockOTPCache(ctrl)
	mail := mocks.NewMockMailer(ctrl)
	svc := service.New(st, otp, mail, routerCfg())
	return NewRouter(svc, Options{Timeout: time.Second}), st, ctrl
}

// issueToken подписывает access-токен теми же параметрами, что и сервис.
func issueToken(t *testing.T, userID string) string {
	t.Helper()
	cfg := routerCfg()
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"uid":   userID,
		"email": "21051234@kiit.ac.in",
		"sub":   userID,
		"iss":   cfg.Auth.Issuer,
		"aud":   cfg.Auth.Audience[0],
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(cfg.Auth.AccessTokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Auth.JWTSecret))
	require.NoError(t, err)
	return signed
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env.Error.Code
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	h, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	hash, err := bcrypt.GenerateFromPassword([]byte("Abcdef1!"), bcrypt.MinCost)
	require.NoError(t, err)

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").Return(nil, storage.ErrNotFound)
	st.EXPECT().UserByPhone(gomock.Any(), "9876543210").Return(nil, storage.ErrNotFound)
	st.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, u models.User) (*models.User, error) {
			u.ID = "6650deadbeefdeadbeefdead"
			return &u, nil
		})

	rr := doJSON(t, h, http.MethodPost, "/auth/register", "", map[string]string{
		"username":     "alice",
		"email":        "21051234@kiit.ac.in",
		"phone_number": "9876543210",
		"gender":       "female",
		"password":     "Abcdef1!",
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var created struct {
		ID         string `json:"id"`
		IsVerified bool   `json:"is_verified"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, "6650deadbeefdeadbeefdead", created.ID)
	require.True(t, created.IsVerified)

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").
		Return(&models.User{ID: created.ID, Email: "21051234@kiit.ac.in", PasswordHash: string(hash)}, nil)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil)

	rr = doJSON(t, h, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "21051234@kiit.ac.in",
		"password": "Abcdef1!",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var logged struct {
		AccessToken string `json:"access_token"`
		User        struct {
			IsOnline bool `json:"is_online"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &logged))
	require.NotEmpty(t, logged.AccessToken)
	require.True(t, logged.User.IsOnline)
}

func TestRouter_CheckUser_EmailTaken(t *testing.T) {
	t.Parallel()

	h, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "21051234@kiit.ac.in").
		Return(&models.User{ID: "u1"}, nil)

	rr := doJSON(t, h, http.MethodPost, "/auth/check-user", "", map[string]string{
		"email":        "21051234@kiit.ac.in",
		"phone_number": "9876543210",
	})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, "email_taken", errCode(t, rr))
}

func TestRouter_QuestionsArePublic(t *testing.T) {
	t.Parallel()

	h, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().Questions(gomock.Any()).Return([]models.Question{
		{ID: "q0", Index: 0, Text: "Ideal weekend?", Options: []string{"A", "B"}},
	}, nil)

	rr := doJSON(t, h, http.MethodGet, "/test/questions", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "Ideal weekend?")
}

func TestRouter_ProtectedRequireToken(t *testing.T) {
	t.Parallel()

	h, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/test/submit"},
		{http.MethodGet, "/users/online"},
		{http.MethodPost, "/compatibility"},
		{http.MethodPost, "/request"},
		{http.MethodPost, "/approve"},
	} {
		rr := doJSON(t, h, route.method, route.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", route.method, route.path)
		require.Equal(t, "unauthenticated", errCode(t, rr))
	}
}

func TestRouter_OnlineUsers(t *testing.T) {
	t.Parallel()

	h, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().OnlineUsers(gomock.Any()).Return([]models.User{
		{ID: "u1", Username: "me", IsOnline: true},
		{ID: "u2", Username: "alice", Gender: models.GenderFemale, PhoneNumber: "9000000002", IsOnline: true},
	}, nil)

	rr := doJSON(t, h, http.MethodGet, "/users/online", issueToken(t, "u1"), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Users, 2)
	require.Equal(t, "u1", out.Users[0].ID)
	require.Equal(t, "u2", out.Users[1].ID)
}

func TestRouter_CreateRequest_ScoreTooLow(t *testing.T) {
	t.Parallel()

	h, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().UserByID(gomock.Any(), "u1").
		Return(&models.User{ID: "u1", Gender: models.GenderMale}, nil)
	st.EXPECT().UserByID(gomock.Any(), "u2").
		Return(&models.User{ID: "u2", Gender: models.GenderFemale}, nil)

	rr := doJSON(t, h, http.MethodPost, "/request", issueToken(t, "u1"), map[string]any{
		"target_user_id": "u2",
		"score":          59,
	})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "score_too_low", errCode(t, rr))
}

func TestRouter_CreateRequest_OK(t *testing.T) {
	t.Parallel()

	h, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().UserByID(gomock.Any(), "u1").
		Return(&models.User{ID: "u1", Gender: models.GenderMale}, nil)
	st.EXPECT().UserByID(gomock.Any(), "u2").
		Return(&models.User{ID: "u2", Gender: models.GenderFemale}, nil)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	rr := doJSON(t, h, http.MethodPost, "/request", issueToken(t, "u1"), map[string]any{
		"target_user_id": "u2",
		"score":          80,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"request sent"}`, rr.Body.String())
}

func TestRouter_Approve_DisclosesPhone(t *testing.T) {
	t.Parallel()

	h, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	appr := &models.User{
		ID:          "u2",
		PhoneNumber: "9000000002",
		Gender:      models.GenderFemale,
		CompatibilityRequests: []models.CompatibilityRequest{
			{RequesterID: "u1", Score: 80, Approved: models.ApprovalPending},
		},
	}
	req := &models.User{
		ID:     "u1",
		Gender: models.GenderMale,
		SentRequests: []models.SentRequest{
			{TargetUserID: "u2", Score: 80, Approved: models.ApprovalPending},
		},
	}

	st.EXPECT().UserByID(gomock.Any(), "u2").Return(appr, nil)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UserByID(gomock.Any(), "u1").Return(req, nil)
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).Return(nil)

	rr := doJSON(t, h, http.MethodPost, "/approve", issueToken(t, "u2"), map[string]any{
		"requester_id": "u1",
		"approved":     true,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var out struct {
		Approved    string `json:"approved"`
		PhoneNumber string `json:"phone_number"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "approved", out.Approved)
	require.Equal(t, "9000000002", out.PhoneNumber)
}

func TestRouter_SubmitAnswers_BadJSON(t *testing.T) {
	t.Parallel()

	h, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/test/submit", bytes.NewBufferString(`{"answers": {`))
	req.Header.Set("Authorization", "Bearer "+issueToken(t, "u1"))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "invalid_argument", errCode(t, rr))
}
