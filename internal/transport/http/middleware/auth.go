package middleware

import (
	"context"
	"net/http"
	"strings"

	apierrors "github.com/pribylovaa/campus-match/internal/errors"
	"github.com/pribylovaa/campus-match/internal/service"
)

// CtxUserID — ключ контекста с идентификатором аутентифицированного
// пользователя.
const CtxUserID ctxKey = "user_id"

// TokenValidator проверяет access-токен и возвращает id пользователя.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// UserIDFrom возвращает id пользователя из контекста (пустая строка,
// если запрос не аутентифицирован).
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(CtxUserID).(string)
	return id
}

// AuthBearer извлекает Bearer-токен из Authorization, валидирует его
// и кладёт id пользователя в контекст по ключу CtxUserID.
// Запросы без токена или с невалидным токеном отклоняются: мидлвар
// вешается только на защищённую группу роутов, публичные (/auth/*)
// идут мимо него.
func AuthBearer(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")

			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || len(auth) == len(prefix) {
				apierrors.WriteError(w, r, service.ErrNotAuthenticated)
				return
			}

			token := strings.TrimSpace(auth[len(prefix):])
			if token == "" {
				apierrors.WriteError(w, r, service.ErrNotAuthenticated)
				return
			}

			userID, err := v.ValidateToken(token)
			if err != nil {
				apierrors.WriteError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
