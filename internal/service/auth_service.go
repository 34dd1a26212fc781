package service

import (
	"errors"
	"strings"

	"loteamento/config"
	"loteamento/internal/auth"
	"loteamento/internal/domain"
	"loteamento/internal/models"
	"loteamento/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

type AuthService struct {
	cfg      *config.Config
	db       *gorm.DB
	userRepo *repository.UserRepository
	recorder *ActivityRecorder
}

func NewAuthService(cfg *config.Config, db *gorm.DB, recorder *ActivityRecorder) *AuthService {
	return &AuthService{cfg: cfg, db: db, userRepo: repository.NewUserRepository(db), recorder: recorder}
}

// HasUsers reports whether at least one account exists.
func (s *AuthService) HasUsers() (bool, error) {
	n, err := s.userRepo.Count()
	if err != nil {
		return false, storageErr(err)
	}
	return n > 0, nil
}

// Register creates the first admin. It is refused once any user exists.
func (s *AuthService) Register(actor Actor, username, password, email string) (*models.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < minPasswordLen {
		return nil, "", validationf("username is required and password must have at least %d characters", minPasswordLen)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u := &models.User{Username: username, Email: email, PasswordHash: string(hash), Role: domain.RoleAdmin}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewUserRepository(tx)
		n, err := repo.Count()
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrRegistrationClosed
		}
		return repo.Create(u)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrUsernameExists
		}
		return nil, "", translate(err, ErrUserNotFound)
	}
	token, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Username, u.Role)
	if err != nil {
		return u, "", err
	}
	actor.UserID = uintPtr(u.ID)
	s.recorder.Record(actor, Activity{
		Action: domain.ActionCreate, Table: domain.TableUsers, RecordID: uintPtr(u.ID),
		After: map[string]any{"username": u.Username, "role": u.Role},
	})
	return u, token, nil
}

func (s *AuthService) Login(actor Actor, username, password string) (*models.User, string, error) {
	u, err := s.userRepo.GetByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCreds
		}
		return nil, "", storageErr(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCreds
	}
	token, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Username, u.Role)
	if err != nil {
		return nil, "", err
	}
	actor.UserID = uintPtr(u.ID)
	s.recorder.Record(actor, Activity{
		Action: domain.ActionLogin, Table: domain.TableUsers, RecordID: uintPtr(u.ID),
	})
	return u, token, nil
}

func (s *AuthService) Logout(actor Actor) {
	s.recorder.Record(actor, Activity{
		Action: domain.ActionLogout, Table: domain.TableUsers, RecordID: actor.UserID,
	})
}

func (s *AuthService) Me(userID uint) (*models.User, error) {
	u, err := s.userRepo.GetByID(userID)
	return u, translate(err, ErrUserNotFound)
}

// ChangePassword updates the user's password. Requires current password verification.
func (s *AuthService) ChangePassword(actor Actor, userID uint, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return validationf("new password must have at least %d characters", minPasswordLen)
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil {
		return translate(err, ErrUserNotFound)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCreds
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(u.ID, string(hash)); err != nil {
		return storageErr(err)
	}
	s.recorder.Record(actor, Activity{
		Action: domain.ActionUpdate, Table: domain.TableUsers, RecordID: uintPtr(u.ID),
		After: map[string]string{"campo": "password"},
	})
	return nil
}
