package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/tour-go/internal/domain"
)

const userColumns = `u.id, u.name, u.email, u.password_hash, u.avatar, u.role, u.created_at, u.updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func (r *UserRepo) handle(ctx context.Context) DB {
	return conn(ctx, r.pool)
}

func userDest(u *domain.User) []any {
	return []any{
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Avatar, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	}
}

// Create inserts u.
//
// Returns:
//   - error: repository.ErrConflict if the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgres.UserRepo.Create"

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now

	_, err := r.handle(ctx).Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, avatar, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Avatar, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)

	return wrapDBErr(op, err)
}

// GetByEmail retrieves a user by email. Emails are stored lower-cased.
//
// Returns:
//   - error: repository.ErrNotFound if the user is not found.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const op = "postgres.UserRepo.GetByEmail"

	var u domain.User
	err := r.handle(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`,
		email,
	).Scan(userDest(&u)...)
	if err != nil {
		return domain.User{}, wrapDBErr(op, err)
	}

	return u, nil
}

// GetByID retrieves a user by ID.
//
// Returns:
//   - error: repository.ErrNotFound if the user is not found.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const op = "postgres.UserRepo.GetByID"

	var u domain.User
	err := r.handle(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`,
		id,
	).Scan(userDest(&u)...)
	if err != nil {
		return domain.User{}, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) UpdateName(ctx context.Context, id uuid.UUID, name string) (domain.User, error) {
	const op = "postgres.UserRepo.UpdateName"

	var u domain.User
	err := r.handle(ctx).QueryRow(ctx,
		`UPDATE users u SET name = $2, updated_at = now()
		 WHERE u.id = $1
		 RETURNING `+userColumns,
		id, name,
	).Scan(userDest(&u)...)
	if err != nil {
		return domain.User{}, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) SetRole(ctx context.Context, id uuid.UUID, role domain.Role) (domain.User, error) {
	const op = "postgres.UserRepo.SetRole"

	var u domain.User
	err := r.handle(ctx).QueryRow(ctx,
		`UPDATE users u SET role = $2, updated_at = now()
		 WHERE u.id = $1
		 RETURNING `+userColumns,
		id, string(role),
	).Scan(userDest(&u)...)
	if err != nil {
		return domain.User{}, wrapDBErr(op, err)
	}

	return u, nil
}

// ListWithStats returns all users, newest first, each with the number of
// bookings made under their email and the total price of those bookings.
func (r *UserRepo) ListWithStats(ctx context.Context) ([]domain.UserWithStats, error) {
	const op = "postgres.UserRepo.ListWithStats"

	rows, err := r.handle(ctx).Query(ctx,
		`SELECT `+userColumns+`,
			COUNT(b.id), COALESCE(SUM(b.total_price), 0)::float8
		 FROM users u
		 LEFT JOIN bookings b ON b.user_email = u.email
		 GROUP BY u.id
		 ORDER BY u.created_at DESC`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	out := make([]domain.UserWithStats, 0)
	for rows.Next() {
		var us domain.UserWithStats
		dest := append(userDest(&us.User), &us.BookingCount, &us.TotalSpent)
		if err := rows.Scan(dest...); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, us)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// DeleteAll wipes the users table.
func (r *UserRepo) DeleteAll(ctx context.Context) (int64, error) {
	const op = "postgres.UserRepo.DeleteAll"

	tag, err := r.handle(ctx).Exec(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tag.RowsAffected(), nil
}

