package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers []user.User, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	for _, usr := range repo.query() {
		if excluded[usr.ID] {
			continue
		}
		if usr.Username == username || usr.Email == email {
			return user.ErrUserExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, _ []core.DBOrdering, _ ...core.DBExecutor) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := repo.query()
	if filter == nil {
		return users, nil
	}

	filtered := make([]user.User, 0, len(users))
	for _, u := range users {
		if filter.Search != "" {
			kw := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(u.Name), kw) &&
				!strings.Contains(strings.ToLower(u.Username), kw) &&
				!strings.Contains(strings.ToLower(u.Email), kw) {
				continue
			}
		}
		if len(filter.Roles) > 0 {
			var match bool
			for _, r := range filter.Roles {
				if u.RoleStartsWith(r) {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.IsActive != nil && (u.IsActive == nil || *u.IsActive != *filter.IsActive) {
			continue
		}
		if !filter.CreatedFrom.IsZero() && u.CreatedAt.Before(filter.CreatedFrom.UTC()) {
			continue
		}
		if !filter.CreatedTo.IsZero() && u.CreatedAt.After(filter.CreatedTo.UTC()) {
			continue
		}
		filtered = append(filtered, u)
	}
	return filtered, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}

	for _, usr := range repo.query() {
		switch {
		case filter.Username != "":
			if usr.Username == filter.Username {
				return usr, nil
			}
		case filter.Email != "":
			if usr.Email == filter.Email {
				return usr, nil
			}
		case len(filter.UsernameOrEmail) > 0:
			for _, uoe := range filter.UsernameOrEmail {
				if uoe != "" && (usr.Username == uoe || usr.Email == uoe) {
					return usr, nil
				}
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	// only save set fields
	if usr.Name != "" {
		orig.Name = usr.Name
	}
	if usr.Username != "" {
		orig.Username = usr.Username
	}
	if usr.Email != "" {
		orig.Email = usr.Email
	}
	if usr.AvatarURL != "" {
		orig.AvatarURL = usr.AvatarURL
	}
	if usr.IsActive != nil {
		orig.IsActive = usr.IsActive
	}
	if usr.Roles != nil {
		orig.Roles = usr.Roles
	}
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	if !usr.UpdatedAt.IsZero() {
		orig.UpdatedAt = usr.UpdatedAt
	}
	if !usr.LastLogin.IsZero() {
		orig.LastLogin = usr.LastLogin
	}
	return *orig, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)
	return nil
}

func (repo *userRepository) GetRoleRequest(_ context.Context, userID string, _ ...core.DBExecutor) (user.RoleRequest, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if req, ok := repo.db.roleRequests[userID]; ok {
		return *req, nil
	}
	return user.RoleRequest{}, user.ErrNotFound
}

func (repo *userRepository) DeleteRoleRequest(_ context.Context, userID string, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.roleRequests[userID]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.roleRequests, userID)
	return nil
}
