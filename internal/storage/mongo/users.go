package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pribylovaa/campus-match/internal/models"
	"github.com/pribylovaa/campus-match/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
)

// userDoc — BSON-представление пользователя. Документ читается и
// замещается целиком; запросные коллекции встроены в него же, как в
// исходной схеме.
type userDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Username              string             `bson:"username"`
	Email                 string             `bson:"email"`
	PasswordHash          string             `bson:"password_hash"`
	PhoneNumber           string             `bson:"phone_number"`
	Gender                string             `bson:"gender"`
	IsVerified            bool               `bson:"is_verified"`
	IsOnline              bool               `bson:"is_online"`
	Answers               map[string]string  `bson:"answers,omitempty"`
	CompatibilityRequests []incomingDoc      `bson:"compatibility_requests"`
	SentRequests          []outgoingDoc      `bson:"sent_requests"`
	CreatedAt             time.Time          `bson:"created_at"`
	UpdatedAt             time.Time          `bson:"updated_at"`
}

type incomingDoc struct {
	RequesterID primitive.ObjectID `bson:"requester_id"`
	Score       int32              `bson:"score"`
	Approved    string             `bson:"approved"`
}

type outgoingDoc struct {
	TargetUserID primitive.ObjectID `bson:"target_user_id"`
	Score        int32              `bson:"score"`
	Approved     string             `bson:"approved"`
	PhoneNumber  string             `bson:"phone_number,omitempty"`
}

// toMS — MongoDB DateTime хранит миллисекунды.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

func toDoc(u *models.User) (*userDoc, error) {
	doc := &userDoc{
		Username:              u.Username,
		Email:                 u.Email,
		PasswordHash:          u.PasswordHash,
		PhoneNumber:           u.PhoneNumber,
		Gender:                string(u.Gender),
		IsVerified:            u.IsVerified,
		IsOnline:              u.IsOnline,
		Answers:               u.Answers,
		CompatibilityRequests: make([]incomingDoc, 0, len(u.CompatibilityRequests)),
		SentRequests:          make([]outgoingDoc, 0, len(u.SentRequests)),
		CreatedAt:             toMS(u.CreatedAt),
		UpdatedAt:             toMS(u.UpdatedAt),
	}

	if u.ID != "" {
		oid, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, fmt.Errorf("bad user id %q: %w", u.ID, err)
		}
		doc.ID = oid
	}

	for _, r := range u.CompatibilityRequests {
		oid, err := primitive.ObjectIDFromHex(r.RequesterID)
		if err != nil {
			return nil, fmt.Errorf("bad requester id %q: %w", r.RequesterID, err)
		}
		doc.CompatibilityRequests = append(doc.CompatibilityRequests, incomingDoc{
			RequesterID: oid,
			Score:       r.Score,
			Approved:    string(r.Approved),
		})
	}

	for _, r := range u.SentRequests {
		oid, err := primitive.ObjectIDFromHex(r.TargetUserID)
		if err != nil {
			return nil, fmt.Errorf("bad target id %q: %w", r.TargetUserID, err)
		}
		doc.SentRequests = append(doc.SentRequests, outgoingDoc{
			TargetUserID: oid,
			Score:        r.Score,
			Approved:     string(r.Approved),
			PhoneNumber:  r.PhoneNumber,
		})
	}

	return doc, nil
}

func fromDoc(doc *userDoc) *models.User {
	u := &models.User{
		ID:                    doc.ID.Hex(),
		Username:              doc.Username,
		Email:                 doc.Email,
		PasswordHash:          doc.PasswordHash,
		PhoneNumber:           doc.PhoneNumber,
		Gender:                models.Gender(doc.Gender),
		IsVerified:            doc.IsVerified,
		IsOnline:              doc.IsOnline,
		Answers:               doc.Answers,
		CompatibilityRequests: make([]models.CompatibilityRequest, 0, len(doc.CompatibilityRequests)),
		SentRequests:          make([]models.SentRequest, 0, len(doc.SentRequests)),
		CreatedAt:             doc.CreatedAt,
		UpdatedAt:             doc.UpdatedAt,
	}

	for _, r := range doc.CompatibilityRequests {
		u.CompatibilityRequests = append(u.CompatibilityRequests, models.CompatibilityRequest{
			RequesterID: r.RequesterID.Hex(),
			Score:       r.Score,
			Approved:    models.Approval(r.Approved),
		})
	}

	for _, r := range doc.SentRequests {
		u.SentRequests = append(u.SentRequests, models.SentRequest{
			TargetUserID: r.TargetUserID.Hex(),
			Score:        r.Score,
			Approved:     models.Approval(r.Approved),
			PhoneNumber:  r.PhoneNumber,
		})
	}

	return u
}

// CreateUser вставляет новый документ пользователя.
// Конфликт уникальных индексов (email/телефон/username) -> ErrAlreadyExists.
func (m *Mongo) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage/mongo/CreateUser"

	now := toMS(time.Now())
	user.CreatedAt = now
	user.UpdatedAt = now

	doc, err := toDoc(&user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.users.InsertOne(ctx, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return nil, fmt.Errorf("%s: insert: %w", op, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		// Mongo всегда возвращает ObjectID.
		return nil, fmt.Errorf("%s: inserted id type", op)
	}

	user.ID = oid.Hex()
	return &user, nil
}

// SaveUser замещает документ целиком по _id (whole-document save).
func (m *Mongo) SaveUser(ctx context.Context, user *models.User) error {
	const op = "storage/mongo/SaveUser"

	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	user.UpdatedAt = toMS(time.Now())

	doc, err := toDoc(user)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := m.users.ReplaceOne(ctx, bson.D{{Key: "_id", Value: oid}}, doc)
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: replace: %w", op, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// UserByID возвращает пользователя по hex-идентификатору.
func (m *Mongo) UserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage/mongo/UserByID"

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return m.findOne(ctx, op, bson.D{{Key: "_id", Value: oid}})
}

// UserByEmail возвращает пользователя по e-mail.
func (m *Mongo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage/mongo/UserByEmail"

	return m.findOne(ctx, op, bson.D{{Key: "email", Value: email}})
}

// UserByPhone возвращает пользователя по номеру телефона.
func (m *Mongo) UserByPhone(ctx context.Context, phone string) (*models.User, error) {
	const op = "storage/mongo/UserByPhone"

	return m.findOne(ctx, op, bson.D{{Key: "phone_number", Value: phone}})
}

func (m *Mongo) findOne(ctx context.Context, op string, filter bson.D) (*models.User, error) {
	var doc userDoc
	if err := m.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: find: %w", op, err)
	}

	return fromDoc(&doc), nil
}

// OnlineUsers возвращает пользователей с is_online=true в порядке
// итерации хранилища.
func (m *Mongo) OnlineUsers(ctx context.Context) ([]models.User, error) {
	const op = "storage/mongo/OnlineUsers"

	cur, err := m.users.Find(ctx, bson.D{{Key: "is_online", Value: true}})
	if err != nil {
		return nil, fmt.Errorf("%s: find: %w", op, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var out []models.User
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		out = append(out, *fromDoc(&doc))
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s: cursor: %w", op, err)
	}

	return out, nil
}
