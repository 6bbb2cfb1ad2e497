package storage

import (
	"context"
	"errors"

	"github.com/pribylovaa/campus-match/internal/models"
)

var (
	// ErrNotFound — сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — конфликт уникальности (email/телефон/username).
	ErrAlreadyExists = errors.New("already exists")
)

// Storage описывает операции над учётными записями и вопросами анкеты.
//
// Семантика записи — документная: каждый пользователь читается и
// сохраняется целиком (whole-document save), междокументных транзакций
// нет. Операции, меняющие две записи, упорядочивают сохранения на
// уровне сервиса.
type Storage interface {
	// CreateUser создаёт учётную запись и возвращает её с присвоенным ID.
	// При конфликте уникальности email/телефона/username — ErrAlreadyExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)

	// SaveUser замещает документ пользователя целиком по его ID.
	// Если записи нет — ErrNotFound.
	SaveUser(ctx context.Context, user *models.User) error

	// UserByID возвращает пользователя по строковому идентификатору.
	// Если записи нет — ErrNotFound.
	UserByID(ctx context.Context, id string) (*models.User, error)

	// UserByEmail возвращает пользователя по нормализованному e-mail.
	// Если записи нет — ErrNotFound.
	UserByEmail(ctx context.Context, email string) (*models.User, error)

	// UserByPhone возвращает пользователя по номеру телефона.
	// Если записи нет — ErrNotFound.
	UserByPhone(ctx context.Context, phone string) (*models.User, error)

	// OnlineUsers возвращает всех пользователей с is_online=true
	// в порядке итерации хранилища, без пагинации.
	OnlineUsers(ctx context.Context) ([]models.User, error)

	// Questions возвращает вопросы анкеты, отсортированные по index.
	Questions(ctx context.Context) ([]models.Question, error)

	// ReplaceQuestions атомарно в пределах коллекции пересоздаёт список
	// вопросов (используется сидером).
	ReplaceQuestions(ctx context.Context, questions []models.Question) error

	// Close закрывает соединения/ресурсы хранилища.
	Close(ctx context.Context) error
}
