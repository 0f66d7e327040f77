package service

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// 令牌有效期下限，部署参数只能在此之上加长。
const minTokenTTL = 2 * time.Hour

// TokenClaims 是签发令牌携带的载荷：用户标识、角色与标准过期字段。
type TokenClaims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// TokenService 负责签发与校验 HS256 签名的会话令牌。
// 未携带令牌属于调用方的 guest 状态，由 handler 层区分，这里只处理
// 已提供令牌的合法性。
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService 创建 TokenService，ttl 不足 2 小时时取下限。
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl < minTokenTTL {
		ttl = minTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue 为指定用户签发带过期时间的令牌。
func (s *TokenService) Issue(userID uint, role string) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate 解析并校验令牌，过期与格式/签名错误返回不同的哨兵错误。
func (s *TokenService) Validate(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&TokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrTokenInvalid
			}
			return s.secret, nil
		},
	)
	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
