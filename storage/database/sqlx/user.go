package sqlxrepos

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

const userColumns = `id, name, username, email, avatar_url, is_active, roles, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo userRepository) queryUsers(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) ([]user.User, error) {
	rows, err := exe.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var dbUsers []dbUser
	if err = sqlx.StructScan(rows, &dbUsers); err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, u.unpack())
	}
	return users, nil
}

func (repo userRepository) getUser(ctx context.Context, exe core.DBExecutor, query string, args ...interface{}) (user.User, error) {
	users, err := repo.queryUsers(ctx, exe, query, args...)
	if err != nil {
		return user.User{}, err
	}
	if len(users) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return users[0], nil
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	query := `SELECT EXISTS (SELECT 1 FROM "user" WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excludedUsers) > 0 {
		ph := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			args = append(args, u.ID)
			ph = append(ph, fmt.Sprintf("$%d", len(args)))
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ph, ", "))
	}
	query += ")"

	var exists bool
	if err := repo.getExec(exec).QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUserExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	u := packUser(usr)

	query := `INSERT INTO "user" (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.getExec(exec).ExecContext(ctx, query,
		u.ID, u.Name, u.Username, u.Email, u.AvatarURL, u.IsActive, u.Roles, u.PasswordHash,
		u.CreatedAt, u.UpdatedAt, u.LastLogin)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM "user"`
	var clauses []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			clauses = append(clauses, fmt.Sprintf(
				"(name ILIKE %s OR username ILIKE %s OR email ILIKE %s)", arg(val), arg(val), arg(val)))
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			roleClauses := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				roleClauses = append(roleClauses, fmt.Sprintf(
					"EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE %s)", arg(role+"%")))
			}
			clauses = append(clauses, "("+strings.Join(roleClauses, " OR ")+")")
		}
		if filter.IsActive != nil {
			clauses = append(clauses, "is_active = "+arg(*filter.IsActive))
		}
		if !filter.CreatedFrom.IsZero() {
			clauses = append(clauses, "created_at >= "+arg(filter.CreatedFrom.UTC()))
		}
		if !filter.CreatedTo.IsZero() {
			clauses = append(clauses, "created_at <= "+arg(filter.CreatedTo.UTC()))
		}
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	if len(ordering) > 0 {
		orderList := make([]string, 0, len(ordering))
		for _, ord := range ordering {
			orderList = append(orderList, ord.String())
		}
		query += " ORDER BY " + strings.Join(orderList, ", ")
	}

	users, err := repo.queryUsers(ctx, repo.getExec(exec), query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return users, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	exe := repo.getExec(exec)

	if filter.ID != "" {
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		usr, err := repo.getUser(ctx, exe, `SELECT `+userColumns+` FROM "user" WHERE id = $1`, filter.ID)
		if err != nil && errors.Cause(err) != user.ErrNotFound {
			return user.User{}, errors.Wrap(err, "finding user by ID")
		}
		return usr, err
	}

	var query string
	var args []interface{}
	switch {
	case filter.Username != "":
		query = `SELECT ` + userColumns + ` FROM "user" WHERE username = $1`
		args = append(args, filter.Username)
	case filter.Email != "":
		query = `SELECT ` + userColumns + ` FROM "user" WHERE email = $1`
		args = append(args, filter.Email)
	case len(filter.UsernameOrEmail) > 0:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		query = `SELECT ` + userColumns + ` FROM "user" WHERE username = $1 OR email = $2`
		args = append(args, uname, email)
	default:
		return user.User{}, user.ErrNotFound
	}

	usr, err := repo.getUser(ctx, exe, query, args...)
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return user.User{}, errors.Wrap(err, "finding user")
	}
	return usr, err
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	u := packUser(usr)

	// unset optional fields keep their stored value
	query := `UPDATE "user" SET
			name = COALESCE($2, name),
			username = COALESCE($3, username),
			email = COALESCE($4, email),
			avatar_url = COALESCE($5, avatar_url),
			is_active = COALESCE($6, is_active),
			roles = COALESCE($7, roles),
			password_hash = COALESCE($8, password_hash),
			updated_at = COALESCE($9, updated_at),
			last_login = COALESCE($10, last_login)
		WHERE id = $1
		RETURNING ` + userColumns
	var roles interface{}
	if usr.Roles != nil {
		roles = u.Roles
	}
	updated, err := repo.getUser(ctx, repo.getExec(exec), query,
		u.ID, u.Name, u.Username, u.Email, u.AvatarURL, u.IsActive, roles, u.PasswordHash,
		u.UpdatedAt, u.LastLogin)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, err
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return updated, nil
}

func (repo userRepository) DeleteUser(ctx context.Context, id string, exec ...core.DBExecutor) error {
	if _, err := uuid.Parse(id); err != nil {
		return user.ErrNotFound
	}
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM "user" WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) GetRoleRequest(ctx context.Context, userID string, exec ...core.DBExecutor) (user.RoleRequest, error) {
	rows, err := repo.getExec(exec).QueryContext(ctx,
		`SELECT id, user_id, role, status, created_at FROM role_request WHERE user_id = $1`, userID)
	if err != nil {
		return user.RoleRequest{}, errors.Wrap(err, "finding role request")
	}
	var reqs []dbRoleRequest
	if err = sqlx.StructScan(rows, &reqs); err != nil {
		return user.RoleRequest{}, errors.Wrap(err, "finding role request")
	}
	if len(reqs) == 0 {
		return user.RoleRequest{}, user.ErrNotFound
	}
	return reqs[0].unpack(), nil
}

func (repo userRepository) DeleteRoleRequest(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM role_request WHERE user_id = $1`, userID)
	if err != nil {
		return errors.Wrap(err, "deleting role request")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}
