package pgstore

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

func (s *Storage) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	err := s.db.QueryRow(ctx, `
INSERT INTO users (email, firstname, lastname, gender, phone_number, country, referral_code, photo_url, password_hash, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING id, created_at
`, u.Email, u.Firstname, u.Lastname, u.Gender, u.PhoneNumber, u.Country, u.ReferralCode, u.PhotoURL, u.PasswordHash, time.Now().UTC()).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflictf("user with this email already exists")
		}
		return nil, errs.Storagef(err, "insert user")
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx, `
SELECT id, email, firstname, lastname, gender, phone_number, country, referral_code, photo_url, password_hash, created_at
FROM users WHERE email = $1
`, email).Scan(&u.ID, &u.Email, &u.Firstname, &u.Lastname, &u.Gender, &u.PhoneNumber, &u.Country, &u.ReferralCode, &u.PhotoURL, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("user %s not found", email)
		}
		return nil, errors.Wrap(err, "select user")
	}
	return &u, nil
}

func (s *Storage) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, errors.Wrap(err, "select email exists")
	}
	return exists, nil
}

func (s *Storage) CreateAdmin(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	err := s.db.QueryRow(ctx, `
INSERT INTO admins (name, password_hash, created_at)
VALUES ($1,$2,$3)
RETURNING id, created_at
`, a.Name, a.PasswordHash, time.Now().UTC()).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errs.Conflictf("admin with this name already exists")
		}
		return nil, errs.Storagef(err, "insert admin")
	}
	return a, nil
}

func (s *Storage) GetAdminByName(ctx context.Context, name string) (*models.Admin, error) {
	var a models.Admin
	err := s.db.QueryRow(ctx, `
SELECT id, name, password_hash, created_at FROM admins WHERE name = $1
`, name).Scan(&a.ID, &a.Name, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, errs.NotFoundf("admin %s not found", name)
		}
		return nil, errors.Wrap(err, "select admin")
	}
	return &a, nil
}
