package inmemdb

import (
	"context"

	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) withNames(usr user.User) user.User {
	usr.CampusName = null.String{}
	if campus, ok := repo.db.campuses[usr.CampusID.String]; ok && usr.CampusID.Valid {
		usr.CampusName = null.StringFrom(campus.Name)
	}
	return usr
}

func (repo *userRepository) CampusExists(ctx context.Context, id string) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	_, ok := repo.db.campuses[id]
	return ok, nil
}

func (repo *userRepository) emailTaken(email, excludedID string) bool {
	for _, u := range repo.db.users {
		if u.Email == email && u.ID != excludedID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.emailTaken(usr.Email, "") {
		return user.User{}, core.ErrDuplicate
	}
	repo.db.users[usr.ID] = usr
	return repo.withNames(usr), nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if (filter.ID == "" || usr.ID == filter.ID) && (filter.Email == "" || usr.Email == filter.Email) {
			return repo.withNames(usr), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter user.QueryFilter, ordering ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter.Search != "" && !containsFold(usr.Name, filter.Search) && !containsFold(usr.Email, filter.Search) {
			continue
		}
		if !matches(filter.Role, usr.Role) || !matches(filter.CampusID, usr.CampusID.String) {
			continue
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, repo.withNames(usr))
	}

	sortBy(users, ordering, map[string]func(a, b user.User) bool{
		"name":       func(a, b user.User) bool { return a.Name < b.Name },
		"email":      func(a, b user.User) bool { return a.Email < b.Email },
		"role":       func(a, b user.User) bool { return a.Role < b.Role },
		"created_at": func(a, b user.User) bool { return a.CreatedAt.Before(b.CreatedAt) },
	}, func(a, b user.User) bool { return a.Name < b.Name })
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.emailTaken(usr.Email, usr.ID) {
		return user.User{}, core.ErrDuplicate
	}
	repo.db.users[usr.ID] = usr
	return repo.withNames(usr), nil
}

func (repo *userRepository) DeleteUser(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)
	return nil
}
