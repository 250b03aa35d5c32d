//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"time"

	"chat-store/domain"
	"chat-store/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(handle string) (domain.User, error)
	GetUser(userID string) (domain.User, error)
	UserExists(userID string) (bool, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// CreateUser mints an identity reference. The engine holds nothing
// beyond the id and a display handle; credentials and profiles belong
// to the external identity system.
func (u UserRepository) CreateUser(handle string) (domain.User, error) {
	user := domain.User{
		ID:        uuid.NewString(),
		Handle:    handle,
		CreatedAt: time.Now().UTC(),
	}
	data, err := encodeUser(user)
	if err != nil {
		return domain.User{}, err
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey(user.ID), data)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUser(userID string) (domain.User, error) {
	var found domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(userID))
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			found, err = DecodeUser(value)
			return err
		})
	})
	if err != nil {
		return domain.User{}, err
	}
	return found, nil
}

func (u UserRepository) UserExists(userID string) (bool, error) {
	_, err := u.GetUser(userID)
	if stderrors.Is(err, errors.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}
