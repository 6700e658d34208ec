package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/monitoria/core"
	"github.com/trezcool/monitoria/core/user"
)

// userColumns valid for ordering, keyed by their API names.
var userOrderColumns = map[string]string{
	"name":       "name",
	"username":   "username",
	"email":      "email",
	"is_active":  "is_active",
	"created_at": "created_at",
	"last_login": "last_login",
}

type dbUser struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     string         `db:"username"`
	Email        string         `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    sql.NullTime   `db:"last_login"`
}

func (du dbUser) toUser() user.User {
	usr := user.User{
		ID:           du.ID,
		Name:         du.Name,
		Username:     du.Username,
		Email:        du.Email,
		Roles:        du.Roles,
		PasswordHash: du.PasswordHash,
		CreatedAt:    du.CreatedAt,
		UpdatedAt:    du.UpdatedAt,
	}
	usr.SetActive(du.IsActive)
	if du.LastLogin.Valid {
		usr.LastLogin = du.LastLogin.Time
	}
	return usr
}

type userRepository struct {
	db *sqlx.DB
	q  sqlx.ExtContext // db, or tx when transaction-bound
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db, q: db}
}

const selectUser = `SELECT id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login FROM "user"`

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	check := func(column, value string, sentinel error) error {
		if value == "" {
			return nil
		}
		var exists bool
		query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM "user" WHERE %s = $1 AND id <> ALL($2))`, column)
		if err := sqlx.GetContext(ctx, repo.q, &exists, query, value, pq.Array(exclIDs)); err != nil {
			return core.NewStorageError("checking "+column+" uniqueness", err)
		}
		if exists {
			return sentinel
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	query := `INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.q.ExecContext(ctx, query,
		usr.ID, usr.Name, usr.Username, usr.Email, usr.Active(), pq.Array(usr.Roles), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, core.NewStorageError("creating user", err)
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	return repo.queryUsers(ctx, selectUser+` ORDER BY created_at DESC`)
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	return repo.getUser(ctx, selectUser+` WHERE id = $1`, id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	return repo.getUser(ctx, selectUser+` WHERE username = $1`, username)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, selectUser+` WHERE email = $1`, email)
}

func (repo *userRepository) GetUserByUsernameOrEmail(ctx context.Context, uname string) (user.User, error) {
	return repo.getUser(ctx, selectUser+` WHERE username = $1 OR email = $1`, uname)
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, orderings ...core.DBOrdering) ([]user.User, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)", p))
	}
	if filter.Roles != nil {
		patterns := make([]string, 0, len(filter.Roles))
		for _, role := range filter.Roles {
			patterns = append(patterns, role+"%")
		}
		where = append(where, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(roles) AS r WHERE r LIKE ANY(%s))", arg(pq.Array(patterns))))
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= "+arg(filter.CreatedFrom.UTC()))
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= "+arg(filter.CreatedTo.UTC()))
	}

	query := selectUser
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += orderBy(orderings, userOrderColumns, "created_at DESC")

	return repo.queryUsers(ctx, query, args...)
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	set := []string{"updated_at = $2"}
	args := []interface{}{usr.ID, usr.UpdatedAt}
	add := func(column string, v interface{}) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if usr.Name != "" {
		add("name", usr.Name)
	}
	if usr.Username != "" {
		add("username", usr.Username)
	}
	if usr.Email != "" {
		add("email", usr.Email)
	}
	if usr.Roles != nil {
		add("roles", pq.Array(usr.Roles))
	}
	if usr.PasswordHash != nil {
		add("password_hash", usr.PasswordHash)
	}
	if isActive != nil {
		add("is_active", *isActive)
	}

	query := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = $1`, strings.Join(set, ", "))
	res, err := repo.q.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, core.NewStorageError("updating user", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		now := time.Now().UTC()
		usr.CreatedAt = now
		usr.UpdatedAt = now
		return repo.CreateUser(ctx, usr)
	}
	usr.UpdatedAt = time.Now().UTC()
	return repo.UpdateUser(ctx, usr, usr.IsActive)
}

func (repo *userRepository) SetLastLogin(ctx context.Context, usr user.User) (user.User, error) {
	usr.LastLogin = time.Now().UTC()
	query := `UPDATE "user" SET last_login = $2 WHERE id = $1`
	if _, err := repo.q.ExecContext(ctx, query, usr.ID, usr.LastLogin); err != nil {
		return user.User{}, core.NewStorageError("setting last login", err)
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.q.ExecContext(ctx, `DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return core.NewStorageError("deleting users", err)
	}
	return nil
}

func (repo *userRepository) getUser(ctx context.Context, query string, args ...interface{}) (user.User, error) {
	var du dbUser
	if err := sqlx.GetContext(ctx, repo.q, &du, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, core.NewStorageError("getting user", err)
	}
	return du.toUser(), nil
}

func (repo *userRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	var dus []dbUser
	if err := sqlx.SelectContext(ctx, repo.q, &dus, query, args...); err != nil {
		return nil, core.NewStorageError("querying users", err)
	}
	users := make([]user.User, 0, len(dus))
	for _, du := range dus {
		users = append(users, du.toUser())
	}
	return users, nil
}
