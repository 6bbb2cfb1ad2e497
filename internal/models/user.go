// Package models содержит доменные сущности matchmaking-сервиса.
package models

import "time"

// Gender — пол пользователя; определяет допустимость запросов контакта.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid сообщает, входит ли значение в допустимый набор.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// Approval — трёхзначный статус запроса контакта.
// Явный enum вместо nullable-булевого флага: pending — решение не принято,
// approved/denied — терминальные исходы.
type Approval string

const (
	ApprovalPending  Approval = "pending"
	ApprovalApproved Approval = "approved"
	ApprovalDenied   Approval = "denied"
)

// FromBool конвертирует булево решение апрувера в терминальный статус.
func ApprovalFromBool(approved bool) Approval {
	if approved {
		return ApprovalApproved
	}

	return ApprovalDenied
}

// CompatibilityRequest — входящий запрос контакта глазами его адресата.
// Score фиксируется в момент создания запроса и не пересчитывается.
// Разрешённый запрос (approved/denied) удаляется из коллекции адресата.
type CompatibilityRequest struct {
	RequesterID string
	Score       int32
	Approved    Approval
}

// SentRequest — зеркальная запись запроса у его отправителя.
// В отличие от входящей стороны никогда не удаляется и накапливается
// как история; PhoneNumber заполняется только при одобрении и содержит
// номер апрувера, а не отправителя.
type SentRequest struct {
	TargetUserID string
	Score        int32
	Approved     Approval
	PhoneNumber  string
}

// User — учётная запись пользователя (Identity Record).
// Важно:
//   - ID — ObjectID MongoDB, наружу/вовнутрь конвертируется в string;
//   - Answers — разреженная карта «индекс вопроса -> буква ответа»,
//     пустая до прохождения теста, после — неизменяемая (пересдач нет);
//   - IsOnline выставляется при успешном входе и в рамках сервиса
//     никогда не сбрасывается;
//   - CompatibilityRequests/SentRequests — две стороны машины состояний
//     запросов контакта (см. типы выше).
type User struct {
	ID                    string
	Username              string
	Email                 string
	PasswordHash          string
	PhoneNumber           string
	Gender                Gender
	IsVerified            bool
	IsOnline              bool
	Answers               map[string]string
	CompatibilityRequests []CompatibilityRequest
	SentRequests          []SentRequest
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// HasTakenTest сообщает, сдан ли тест (ответы неизменяемы после сдачи).
func (u *User) HasTakenTest() bool {
	return len(u.Answers) > 0
}

// IncomingIndex возвращает позицию неразрешённого входящего запроса
// от requesterID или -1.
func (u *User) IncomingIndex(requesterID string) int {
	for i, r := range u.CompatibilityRequests {
		if r.RequesterID == requesterID {
			return i
		}
	}

	return -1
}

// OutgoingIndex возвращает позицию исходящего запроса к targetID или -1.
func (u *User) OutgoingIndex(targetID string) int {
	for i, r := range u.SentRequests {
		if r.TargetUserID == targetID {
			return i
		}
	}

	return -1
}

// UserSummary — проекция пользователя для списка «кто онлайн».
// Состав полей фиксирован контрактом клиента: по ним клиент находит
// «себя», фильтрует противоположный пол и строит входящие/исходящие
// списки без дополнительных запросов.
type UserSummary struct {
	ID                    string
	Username              string
	Gender                Gender
	PhoneNumber           string
	CompatibilityRequests []CompatibilityRequest
	SentRequests          []SentRequest
}

// Summary строит проекцию для Presence/Directory.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                    u.ID,
		Username:              u.Username,
		Gender:                u.Gender,
		PhoneNumber:           u.PhoneNumber,
		CompatibilityRequests: u.CompatibilityRequests,
		SentRequests:          u.SentRequests,
	}
}
