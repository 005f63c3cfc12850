package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(id int) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Register(u User) (User, error) {
	if _, err := s.repo.GetByEmail(u.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u.Password = string(hashed)
	return s.repo.Create(u)
}

func (s *Service) Authenticate(email, password string) (User, error) {
	u, err := s.repo.GetByEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

func (s *Service) UpdateDisplayName(id int, displayName string) (User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = now()
	return s.repo.Update(id, u)
}

// UpdateEmail changes the account email. The caller must supply the
// current password; the credential is checked and then discarded, never
// stored.
func (s *Service) UpdateEmail(id int, currentPassword, newEmail string) (User, error) {
	u, err := s.reauthenticate(id, currentPassword)
	if err != nil {
		return User{}, err
	}

	newEmail = strings.TrimSpace(newEmail)
	if other, err := s.repo.GetByEmail(newEmail); err == nil && other.ID != id {
		return User{}, ErrEmailExists
	} else if err != nil && err != ErrNotFound {
		return User{}, err
	}

	u.Email = newEmail
	u.UpdatedAt = now()
	return s.repo.Update(id, u)
}

// UpdatePassword changes the account password after re-authentication.
func (s *Service) UpdatePassword(id int, currentPassword, newPassword string) (User, error) {
	u, err := s.reauthenticate(id, currentPassword)
	if err != nil {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u.Password = string(hashed)
	u.UpdatedAt = now()
	return s.repo.Update(id, u)
}

// DeleteAccount removes the account after re-authentication. Associated
// order cleanup is coordinated by the handler layer.
func (s *Service) DeleteAccount(id int, currentPassword string) error {
	if _, err := s.reauthenticate(id, currentPassword); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// VerifyPassword re-checks the current credential without mutating
// anything. Used by the handler before destructive operations.
func (s *Service) VerifyPassword(id int, password string) error {
	_, err := s.reauthenticate(id, password)
	return err
}

func (s *Service) reauthenticate(id int, password string) (User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
