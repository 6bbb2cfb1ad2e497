// http собирает REST-маршруты сервиса поверх chi с общей цепочкой
// middleware (recover, request-id, логирование, метрики, таймаут)
// и отдельной auth-группой для защищённых эндпойнтов.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/campus-match/internal/service"
	"github.com/pribylovaa/campus-match/internal/transport/http/handlers"
	"github.com/pribylovaa/campus-match/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(),            // per-route метрики Prometheus
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Зависимости хендлеров.
	h := handlers.New(svc)

	// Регистрация маршрутов.
	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, svc)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, svc)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, v middleware.TokenValidator) {
	// auth — публичные.
	r.Post("/auth/check-user", h.CheckUser)
	r.Post("/auth/otp/send", h.SendOTP)
	r.Post("/auth/otp/verify", h.VerifyOTP)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// Вопросы анкеты публичны: клиент показывает их до входа.
	r.Get("/test/questions", h.Questions)

	// Всё остальное требует Bearer-токен.
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthBearer(v))

		r.Post("/test/submit", h.SubmitAnswers)
		r.Get("/users/online", h.OnlineUsers)
		r.Post("/compatibility", h.Compatibility)
		r.Post("/request", h.CreateRequest)
		r.Post("/approve", h.Approve)
	})
}
