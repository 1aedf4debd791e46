package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounthub/account-service/internal/models"
	"accounthub/account-service/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const uniqueViolation = "23505"

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, name, email, created_at
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Created); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, store.ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *UserStore) Create(ctx context.Context, user models.User, rawPassword string) (models.User, store.Result, error) {
	if violations := validatePassword(rawPassword); len(violations) > 0 {
		return models.User{}, store.Failed(violations...), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, store.Result{}, fmt.Errorf("hash password: %w", err)
	}

	user.ID = uuid.NewString()
	user.Created = time.Now().UTC()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (user_id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Name, user.Email, string(hash), user.Created)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, store.Failed(fmt.Sprintf("Email '%s' is already taken.", user.Email)), nil
		}
		return models.User{}, store.Result{}, err
	}
	return user, store.OK(), nil
}

// PasswordHash exposes stored credential material to the credential verifier.
func (s *UserStore) PasswordHash(ctx context.Context, email string) (string, error) {
	var hash string
	row := s.pool.QueryRow(ctx, `
		SELECT password_hash
		FROM users
		WHERE lower(email) = lower($1)
	`, email)
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrUserNotFound
		}
		return "", err
	}
	return hash, nil
}

func (s *UserStore) Roles(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.name
		FROM user_roles ur
		JOIN roles r ON r.role_id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY ur.granted_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *UserStore) AddRole(ctx context.Context, userID, roleID string) (store.Result, error) {
	// Concurrent identical assignments converge on the conflict target.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roleID)
	if err != nil {
		return store.Result{}, err
	}
	return store.OK(), nil
}

func (s *UserStore) ReplaceRoles(ctx context.Context, userID, roleID string) (store.Result, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return store.Result{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID)
	if err != nil {
		return store.Result{}, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
	`, userID, roleID)
	if err != nil {
		return store.Result{}, err
	}
	if err = tx.Commit(ctx); err != nil {
		return store.Result{}, err
	}
	return store.OK(), nil
}

func (s *UserStore) ListWithRoles(ctx context.Context) ([]models.UserWithRoles, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.user_id, u.name, u.email, u.created_at,
		       COALESCE(array_agg(r.name ORDER BY ur.granted_at) FILTER (WHERE r.name IS NOT NULL), '{}')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.user_id
		LEFT JOIN roles r ON r.role_id = ur.role_id
		GROUP BY u.user_id, u.name, u.email, u.created_at
		ORDER BY u.created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.UserWithRoles
	for rows.Next() {
		var user models.UserWithRoles
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Created, &user.Roles); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type RoleStore struct {
	pool *pgxpool.Pool
}

func NewRoleStore(pool *pgxpool.Pool) *RoleStore {
	return &RoleStore{pool: pool}
}

func (s *RoleStore) FindByName(ctx context.Context, name string) (models.Role, error) {
	var role models.Role
	row := s.pool.QueryRow(ctx, `
		SELECT role_id, name
		FROM roles
		WHERE name = $1
	`, name)
	if err := row.Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Role{}, store.ErrRoleNotFound
		}
		return models.Role{}, err
	}
	return role, nil
}

func (s *RoleStore) Create(ctx context.Context, name string) (models.Role, error) {
	// Find-or-create races resolve on the name conflict target instead of
	// failing the loser.
	_, err := s.pool.Exec(ctx, `
		INSERT INTO roles (role_id, name)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`, uuid.NewString(), name)
	if err != nil {
		return models.Role{}, err
	}
	return s.FindByName(ctx, name)
}

func (s *RoleStore) List(ctx context.Context) ([]models.Role, error) {
	rows, err := s.pool.Query(ctx, `SELECT role_id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
