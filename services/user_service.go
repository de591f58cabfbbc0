package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aapokoiv/nutrition-tracker/models"
	"github.com/aapokoiv/nutrition-tracker/utils"

	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	pictures PictureStore
}

func NewUserService(db *gorm.DB, pictures PictureStore) *UserService {
	return &UserService{db: db, pictures: pictures}
}

type RegisterInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (in RegisterInput) validate() (RegisterInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return in, invalid("username", "username and password are required")
	}
	if utf8.RuneCountInString(in.Username) > maxUsernameLen {
		return in, invalid("username", "too long (max %d characters)", maxUsernameLen)
	}
	if in.Password != in.PasswordConfirm {
		return in, invalid("password_confirm", "passwords don't match")
	}
	if n := utf8.RuneCountInString(in.Password); n < minPasswordLen || n > maxPasswordLen {
		return in, invalid("password", "must be between %d and %d characters long", minPasswordLen, maxPasswordLen)
	}
	if len(in.Password) > maxPasswordBytes {
		return in, invalid("password", "too long (max %d bytes)", maxPasswordBytes)
	}
	return in, nil
}

// Register creates a user. A taken username returns ErrConflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	var taken int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ?", in.Username).
		Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken > 0 {
		return nil, fmt.Errorf("username %q already taken: %w", in.Username, ErrConflict)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:      in.Username,
		PasswordHash:  hash,
		ProteinTarget: 100,
		CalorieTarget: 2000,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("username %q already taken: %w", in.Username, ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Authenticate returns ErrBadCredentials for both unknown users and wrong
// passwords.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ?", strings.TrimSpace(username)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrBadCredentials
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Omit("profile_picture").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProteinTarget(ctx context.Context, userID uint, target int) error {
	if target < 1 || target > maxTarget {
		return invalid("protein_target", "must be between 1 and %d", maxTarget)
	}
	return s.updateColumn(ctx, userID, "protein_target", target)
}

func (s *UserService) UpdateCalorieTarget(ctx context.Context, userID uint, target int) error {
	if target < 1 || target > maxTarget {
		return invalid("calorie_target", "must be between 1 and %d", maxTarget)
	}
	return s.updateColumn(ctx, userID, "calorie_target", target)
}

func (s *UserService) UpdateGoals(ctx context.Context, userID uint, goals string) error {
	goals = strings.TrimSpace(goals)
	if utf8.RuneCountInString(goals) > maxGoalsLen {
		return invalid("goals", "too long (max %d characters)", maxGoalsLen)
	}
	return s.updateColumn(ctx, userID, "goals", goals)
}

// SetProfilePicture validates raw as a JPEG of at most 100KB, normalizes it
// and stores it.
func (s *UserService) SetProfilePicture(ctx context.Context, userID uint, raw []byte) error {
	pic, err := utils.NormalizeJPEG(raw)
	if err != nil {
		if errors.Is(err, utils.ErrNotJPEG) || errors.Is(err, utils.ErrPictureTooLarge) {
			return invalid("profile_picture", "%s", err.Error())
		}
		return fmt.Errorf("normalize profile picture: %w", err)
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	return s.pictures.Put(ctx, userID, pic)
}

func (s *UserService) ProfilePicture(ctx context.Context, userID uint) ([]byte, error) {
	return s.pictures.Get(ctx, userID)
}

func (s *UserService) updateColumn(ctx context.Context, userID uint, column string, value any) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("user", userID)
	}
	return nil
}
