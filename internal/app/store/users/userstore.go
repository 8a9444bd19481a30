package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/applytrack/internal/app/system/authutil"
	"github.com/dalemusser/applytrack/internal/app/system/inputval"
	"github.com/dalemusser/applytrack/internal/app/system/normalize"
	"github.com/dalemusser/applytrack/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errNameNeeded     = errors.New("full name is required")
	errBadEmail       = errors.New("a valid email address is required")
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create normalizes the account fields, hashes password and inserts the user.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.EmailCI = text.Fold(u.Email)
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}

	if u.FullName == "" {
		return models.User{}, errNameNeeded
	}
	if !inputval.IsValidEmail(u.Email) {
		return models.User{}, errBadEmail
	}
	if !validStatus(u.Status) {
		return models.User{}, errBadStatus
	}

	if err := authutil.ValidatePassword(password); err != nil {
		return models.User{}, err
	}
	hash, err := authutil.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = hash

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate returns the active user whose email and password match.
// It returns mongo.ErrNoDocuments for any mismatch so callers cannot tell an
// unknown email from a wrong password.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if normalize.Status(u.Status) != models.UserStatusActive {
		return nil, mongo.ErrNoDocuments
	}
	if !authutil.CheckPassword(password, u.PasswordHash) {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

// TouchLogin records a successful sign-in.
func (s *Store) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"last_login_at": now,
	}})
	return err
}

// UpdateName changes the display name.
func (s *Store) UpdateName(ctx context.Context, id primitive.ObjectID, fullName string) error {
	fullName = normalize.Name(fullName)
	if fullName == "" {
		return errNameNeeded
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"full_name":  fullName,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UpdatePassword verifies current and stores a hash of next.
func (s *Store) UpdatePassword(ctx context.Context, id primitive.ObjectID, current, next string) error {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !authutil.CheckPassword(current, u.PasswordHash) {
		return ErrWrongPassword
	}
	if err := authutil.ValidatePassword(next); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(next)
	if err != nil {
		return err
	}
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	return err
}

// ErrWrongPassword is returned by UpdatePassword when current does not match.
var ErrWrongPassword = errors.New("current password is incorrect")

// SetStatusByEmail enables or disables an account.
func (s *Store) SetStatusByEmail(ctx context.Context, email, status string) error {
	status = normalize.Status(status)
	if !validStatus(status) {
		return errBadStatus
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email_ci": text.Fold(normalize.Email(email))},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func validStatus(s string) bool {
	return s == models.UserStatusActive || s == models.UserStatusDisabled
}
