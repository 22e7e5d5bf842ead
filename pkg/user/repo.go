package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const errDuplicateEntry = 1062

const userColumns = `user_id, full_name, public_username, display_name, email, password_hash,
	country_code, timezone, locale, profile_bio, profile_image_url,
	is_active, is_staff, is_instructor,
	created_at, updated_at, accepts_tos_at, last_login_at, last_login_ip`

type MySQLRepo struct {
	DB *sql.DB
}

func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u                   User
		acceptsTOS, lastLog sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.FullName, &u.PublicUsername, &u.DisplayName, &u.Email, &u.PasswordHash,
		&u.CountryCode, &u.Timezone, &u.Locale, &u.ProfileBio, &u.ProfileImageURL,
		&u.IsActive, &u.IsStaff, &u.IsInstructor,
		&u.CreatedAt, &u.UpdatedAt, &acceptsTOS, &lastLog, &u.LastLoginIP,
	)
	if err != nil {
		return nil, err
	}
	if acceptsTOS.Valid {
		u.AcceptsTOSAt = &acceptsTOS.Time
	}
	if lastLog.Valid {
		u.LastLoginAt = &lastLog.Time
	}
	return &u, nil
}

func (r *MySQLRepo) findOne(ctx context.Context, where string, arg any) (*User, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *MySQLRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *MySQLRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, "user_id = ?", id)
}

func (r *MySQLRepo) Insert(ctx context.Context, u *User) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (full_name, public_username, display_name, email, password_hash,
			country_code, timezone, locale, profile_bio, profile_image_url,
			is_active, is_staff, is_instructor, created_at, updated_at, accepts_tos_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FullName, u.PublicUsername, u.DisplayName, u.Email, u.PasswordHash,
		u.CountryCode, u.Timezone, u.Locale, u.ProfileBio, u.ProfileImageURL,
		u.IsActive, u.IsStaff, u.IsInstructor, u.CreatedAt, u.UpdatedAt, u.AcceptsTOSAt,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == errDuplicateEntry {
			return 0, ErrEmailTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert user id: %w", err)
	}
	u.ID = id
	return id, nil
}

func (r *MySQLRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time, ip string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_login_at = ?, last_login_ip = ? WHERE user_id = ?",
		at, ip, id,
	)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return expectRow(res)
}

func (r *MySQLRepo) UpdateProfile(ctx context.Context, id int64, p ProfileUpdate, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users
		SET full_name = ?, display_name = ?, profile_bio = ?, country_code = ?, timezone = ?, updated_at = ?
		WHERE user_id = ?`,
		p.FullName, p.DisplayName, p.ProfileBio, p.CountryCode, p.Timezone, at, id,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return expectRow(res)
}

func (r *MySQLRepo) List(ctx context.Context) ([]*User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at DESC, user_id DESC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
