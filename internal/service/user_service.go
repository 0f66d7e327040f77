package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/pinnacleapp/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserInvalidInput   = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const maxUsernameLength = 255

// UserService 负责账号注册与凭据校验。
type UserService struct {
	db *gorm.DB
}

// NewUserService 创建 UserService。
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register 注册新用户。密码以 bcrypt 加盐哈希存储，哈希串自带盐值，
// 校验无需额外状态。角色固定为普通用户，不接受外部输入。
func (s *UserService) Register(username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || utf8.RuneCountInString(username) > maxUsernameLength {
		return nil, ErrUserInvalidInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Username: username, PasswordHash: string(hashed), Role: db.RoleUser}
	insert := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoNothing: true,
	}).Create(&user)
	if insert.Error != nil {
		return nil, insert.Error
	}
	if insert.RowsAffected == 0 {
		return nil, ErrUserExists
	}

	return &user, nil
}

// Authenticate 校验用户名密码。用户不存在与密码不符返回同一个错误，
// 不向调用方泄露具体原因。
func (s *UserService) Authenticate(username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrUserInvalidInput
	}

	var user db.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}
