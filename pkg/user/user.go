package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("email and password are required")
	ErrPasswordTooLong    = errors.New("password is too long")
)

type User struct {
	ID              int64
	FullName        string
	PublicUsername  string
	DisplayName     string
	Email           string
	PasswordHash    string
	CountryCode     string
	Timezone        string
	Locale          string
	ProfileBio      string
	ProfileImageURL string
	IsActive        bool
	IsStaff         bool
	IsInstructor    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	AcceptsTOSAt    *time.Time
	LastLoginAt     *time.Time
	LastLoginIP     string
}

type SignupForm struct {
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	PublicUsername string `json:"public_username"`
	CountryCode    string `json:"country_code"`
}

// ProfileUpdate holds the self-editable profile fields. All of them are
// written on every update.
type ProfileUpdate struct {
	FullName    string `json:"full_name"`
	DisplayName string `json:"display_name"`
	ProfileBio  string `json:"profile_bio"`
	CountryCode string `json:"country_code"`
	Timezone    string `json:"timezone"`
}

// PublicUser is the identity returned alongside a fresh token.
type PublicUser struct {
	UserID       int64  `json:"user_id"`
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	IsStaff      bool   `json:"is_staff"`
	IsInstructor bool   `json:"is_instructor"`
}

type Profile struct {
	UserID          int64  `json:"user_id"`
	FullName        string `json:"full_name"`
	Email           string `json:"email"`
	PublicUsername  string `json:"public_username"`
	DisplayName     string `json:"display_name"`
	CountryCode     string `json:"country_code"`
	Timezone        string `json:"timezone"`
	Locale          string `json:"locale"`
	ProfileBio      string `json:"profile_bio"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Summary is one row of the staff user listing.
type Summary struct {
	UserID         int64      `json:"user_id"`
	FullName       string     `json:"full_name"`
	Email          string     `json:"email"`
	PublicUsername string     `json:"public_username"`
	CountryCode    string     `json:"country_code"`
	IsActive       bool       `json:"is_active"`
	IsInstructor   bool       `json:"is_instructor"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		UserID:       u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		IsStaff:      u.IsStaff,
		IsInstructor: u.IsInstructor,
	}
}

func (u *User) Profile() Profile {
	return Profile{
		UserID:          u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		PublicUsername:  u.PublicUsername,
		DisplayName:     u.DisplayName,
		CountryCode:     u.CountryCode,
		Timezone:        u.Timezone,
		Locale:          u.Locale,
		ProfileBio:      u.ProfileBio,
		ProfileImageURL: u.ProfileImageURL,
	}
}

func (u *User) Summary() Summary {
	return Summary{
		UserID:         u.ID,
		FullName:       u.FullName,
		Email:          u.Email,
		PublicUsername: u.PublicUsername,
		CountryCode:    u.CountryCode,
		IsActive:       u.IsActive,
		IsInstructor:   u.IsInstructor,
		CreatedAt:      u.CreatedAt,
		LastLoginAt:    u.LastLoginAt,
	}
}

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	Insert(ctx context.Context, u *User) (int64, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time, ip string) error
	UpdateProfile(ctx context.Context, id int64, p ProfileUpdate, at time.Time) error
	List(ctx context.Context) ([]*User, error)
}
