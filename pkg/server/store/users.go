package store

import "github.com/modelgrid/modelgrid/pkg/model"

// UsersStore abstracts user rows. Credentials live outside the system
// boundary; this store only carries id, email and role.
type UsersStore interface {
	// Create inserts a user, generating an id when absent.
	Create(user *model.User) error

	// FindByEmail fetches a user by email. ErrUserNotFound on miss.
	FindByEmail(email string) (*model.User, error)

	// FindByID fetches a user by id. ErrUserNotFound on miss.
	FindByID(id string) (*model.User, error)
}
