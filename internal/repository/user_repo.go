package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"user_service/internal/domain"
	"user_service/pkg/db"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	sqlInsertUser = `
        INSERT INTO users (name, email, age, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	sqlSelectUserByID = `
        SELECT id, name, email, age, created_at
        FROM users
        WHERE id = $1`

	sqlSelectUsers = `
        SELECT id, name, email, age, created_at
        FROM users
        ORDER BY id ASC`

	sqlUpdateUser = `
        UPDATE users
        SET name = $1, email = $2, age = $3
        WHERE id = $4`

	sqlDeleteUser = `DELETE FROM users WHERE id = $1`
)

type sqlUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
	now func() time.Time
}

// NewSQLUserRepository works with any of the drivers registered by pkg/db
// (lib/pq, pgx, sqlite3).
func NewSQLUserRepository(database *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &sqlUserRepository{
		db:  database,
		log: logger,
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (r *sqlUserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	saved := *user
	saved.CreatedAt = r.now()

	r.log.Debugf("Repository: Attempting to create user with email: %s", user.Email)
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, sqlInsertUser, saved.Name, saved.Email, saved.Age, saved.CreatedAt).Scan(&saved.ID)
	})
	if err != nil {
		r.logDriverError("create user", err)
		return nil, domain.PersistenceFailure("save user", err)
	}

	r.log.Infof("Repository: User created successfully with ID: %d", saved.ID)
	return &saved, nil
}

func (r *sqlUserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, sqlSelectUserByID, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Age,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with ID %d not found", id)
			return nil, domain.NotFound(id)
		}
		r.logDriverError("get user by id", err)
		return nil, domain.PersistenceFailure("get user by id", err)
	}

	r.log.Debugf("Repository: User found by ID %d", id)
	return user, nil
}

func (r *sqlUserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, sqlSelectUsers)
	if err != nil {
		r.logDriverError("list users", err)
		return nil, domain.PersistenceFailure("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Age, &user.CreatedAt); err != nil {
			r.log.Errorf("Repository: Failed to scan user row: %v", err)
			return nil, domain.PersistenceFailure("read users", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Repository: Error during users list iteration: %v", err)
		return nil, domain.PersistenceFailure("read users", err)
	}

	r.log.Debugf("Repository: Retrieved %d users", len(users))
	return users, nil
}

func (r *sqlUserRepository) Update(ctx context.Context, user *domain.User) error {
	var affected int64
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, sqlUpdateUser, user.Name, user.Email, user.Age, user.ID)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logDriverError("update user", err)
		return domain.PersistenceFailure("update user", err)
	}
	if affected == 0 {
		r.log.Warnf("Repository: User with ID %d not found for update", user.ID)
		return domain.NotFound(user.ID)
	}

	r.log.Infof("Repository: User updated successfully with ID: %d", user.ID)
	return nil
}

func (r *sqlUserRepository) Delete(ctx context.Context, id int64) error {
	var affected int64
	err := db.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, sqlDeleteUser, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		r.logDriverError("delete user", err)
		return domain.PersistenceFailure("delete user", err)
	}
	if affected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent user ID %d", id)
		return domain.NotFound(id)
	}

	r.log.Infof("Repository: User deleted successfully with ID: %d", id)
	return nil
}

func (r *sqlUserRepository) logDriverError(op string, err error) {
	entry := r.log.WithField("op", op)

	var pqErr *pq.Error
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pqErr):
		entry = entry.WithFields(logrus.Fields{"sqlstate": string(pqErr.Code), "constraint": pqErr.Constraint})
	case errors.As(err, &pgErr):
		entry = entry.WithFields(logrus.Fields{"sqlstate": pgErr.Code, "constraint": pgErr.ConstraintName})
	}
	entry.Errorf("Repository: Failed to %s: %v", op, err)
}
