// service содержит бизнес-логику matchmaking-сервиса: регистрацию и
// вход, подтверждение почты, анкету совместимости, подсчёт балла,
// список «кто онлайн» и машину состояний запросов контакта.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр
//     безопасен для конкурентного использования при условии, что
//     переданные хранилище/кэш потокобезопасны.
//   - Ошибки возвращаются сентинелами ниже и далее маппятся
//     HTTP-транспортом на статусы (см. internal/transport/http).
package service

import (
	"errors"

	"github.com/pribylovaa/campus-match/internal/cache"
	"github.com/pribylovaa/campus-match/internal/config"
	"github.com/pribylovaa/campus-match/internal/mailer"
	"github.com/pribylovaa/campus-match/internal/storage"
)

var (
	// ErrInvalidArgument — неверные входные параметры запроса к сервису.
	// Транспорт: 400.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь
	// не найден. Транспорт: 401.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated — личность вызывающего не удалось разрешить
	// (нет валидного токена или учётная запись исчезла). Транспорт: 401.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidToken — токен некорректен по формату/подписи. Транспорт: 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. Транспорт: 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrEmailTaken — e-mail уже занят другим пользователем. Транспорт: 409.
	ErrEmailTaken = errors.New("email already taken")

	// ErrPhoneTaken — номер телефона уже занят. Транспорт: 409.
	ErrPhoneTaken = errors.New("phone number already taken")

	// ErrAlreadyExists — конфликт уникальности при вставке (гонка
	// с параллельной регистрацией). Транспорт: 409.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound — пользователь или запрос отсутствует. Транспорт: 404.
	ErrNotFound = errors.New("not found")

	// ErrOTPNotFound — код не запрашивался или истёк по TTL. Транспорт: 400.
	ErrOTPNotFound = errors.New("otp not found or expired")

	// ErrOTPMismatch — код не совпал. Транспорт: 400.
	ErrOTPMismatch = errors.New("otp mismatch")

	// ErrTestAlreadyTaken — тест уже сдан; пересдача запрещена. Транспорт: 403.
	ErrTestAlreadyTaken = errors.New("test already taken")

	// ErrTestIncomplete — одна из сторон не прошла тест, балл не имеет
	// смысла. Транспорт: 400.
	ErrTestIncomplete = errors.New("both users must complete the test")

	// ErrSameGender — запросы допустимы только между противоположными
	// полами. Транспорт: 403.
	ErrSameGender = errors.New("opposite gender required")

	// ErrScoreTooLow — балл ниже порога совместимости. Транспорт: 403.
	ErrScoreTooLow = errors.New("score below threshold")

	// ErrDuplicateSent — исходящий запрос к этому адресату уже существует
	// (в любом статусе; история не удаляется). Транспорт: 400.
	ErrDuplicateSent = errors.New("request already sent to this user")

	// ErrDuplicatePending — у адресата уже есть неразрешённый входящий
	// запрос от этого отправителя. Транспорт: 400.
	ErrDuplicatePending = errors.New("request already pending")

	// ErrInternal — внутренняя ошибка (сторадж/кэш/почта/контекст).
	// Транспорт: 500.
	ErrInternal = errors.New("internal")
)

// Service описывает бизнес-логику matchmaking-сервиса.
type Service struct {
	storage storage.Storage
	otp     cache.OTPCache
	mail    mailer.Mailer
	cfg     config.Config
}

// New создаёт новый экземпляр Service.
func New(storage storage.Storage, otp cache.OTPCache, mail mailer.Mailer, cfg config.Config) *Service {
	return &Service{
		storage: storage,
		otp:     otp,
		mail:    mail,
		cfg:     cfg,
	}
}
