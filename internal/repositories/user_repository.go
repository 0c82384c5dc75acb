package repositories

import (
	"context"

	"go.uber.org/zap"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/metrics"
	"github.com/anonto42/aora/backend/internal/models"
)

const usersCollection = "users"

// NewUser carries the profile created at registration
type NewUser struct {
	AuthID   string
	Username string
	Email    string
	Avatar   string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	GetUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	ExistsByField(ctx context.Context, collection, field string, value any) (bool, error)
	RegisterUser(ctx context.Context, u NewUser) (*models.User, error)
}

// DocumentUserRepository implements UserRepository over a document store
type DocumentUserRepository struct {
	store   docstore.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewUserRepository creates a new DocumentUserRepository
func NewUserRepository(store docstore.Store, logger *zap.Logger, m *metrics.Metrics) *DocumentUserRepository {
	return &DocumentUserRepository{store: store, logger: logger, metrics: m}
}

// GetUserByAuthID returns the user linked to authID, or nil when there is none
func (r *DocumentUserRepository) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	docs, err := r.store.Query(ctx, usersCollection, docstore.Where("auth_id", authID).WithLimit(1))
	if err != nil {
		r.metrics.RepositoryError("get_user_by_auth_id")
		return nil, readError("get user", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	user := userFromDocument(docs[0])
	return &user, nil
}

// ExistsByField reports whether any document in collection has field == value.
// A failed query is an error, never false.
func (r *DocumentUserRepository) ExistsByField(ctx context.Context, collection, field string, value any) (bool, error) {
	docs, err := r.store.Query(ctx, collection, docstore.Where(field, value).WithLimit(1))
	if err != nil {
		r.metrics.RepositoryError("exists_by_field")
		return false, readError("check "+collection+"."+field, err)
	}
	return len(docs) > 0, nil
}

// RegisterUser creates the profile document after checking that the auth id,
// username and email are all unused. The checks are not atomic with the write.
func (r *DocumentUserRepository) RegisterUser(ctx context.Context, u NewUser) (*models.User, error) {
	checks := []struct {
		field, label, value string
	}{
		{"auth_id", "account", u.AuthID},
		{"username", "username", u.Username},
		{"email", "email", u.Email},
	}
	for _, c := range checks {
		exists, err := r.ExistsByField(ctx, usersCollection, c.field, c.value)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, &DuplicateFieldError{Field: c.label}
		}
	}

	user := models.User{AuthID: u.AuthID, Username: u.Username, Email: u.Email, Avatar: u.Avatar}
	fields := docstore.Fields{
		"auth_id":  user.AuthID,
		"username": user.Username,
		"email":    user.Email,
	}
	if user.Avatar != "" {
		fields["avatar"] = user.Avatar
	}
	id, err := r.store.Create(ctx, usersCollection, fields)
	if err != nil {
		r.metrics.RepositoryError("register_user")
		return nil, writeError("create user", err)
	}
	user.ID = id
	r.logger.Info("user registered", zap.String("user_id", id), zap.String("auth_id", u.AuthID))
	return &user, nil
}

func userFromDocument(doc docstore.Document) models.User {
	return models.User{
		ID:       doc.ID,
		AuthID:   doc.String("auth_id"),
		Username: doc.String("username"),
		Email:    doc.String("email"),
		Avatar:   doc.String("avatar"),
	}
}
