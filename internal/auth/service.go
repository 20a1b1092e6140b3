package auth

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pametni-paketnik/locker-api/internal/config"
)

type Service struct {
	config     *config.AuthConfig
	log        *zap.Logger
	repository Repository
}

type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

func NewService(config *config.AuthConfig, log *zap.Logger, repo Repository) *Service {
	return &Service{
		config:     config,
		log:        log,
		repository: repo,
	}
}

func (s *Service) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func (s *Service) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func (s *Service) GenerateToken(user *User) (string, error) {
	expirationTime := time.Now().Add(s.config.TokenExpiration)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func (s *Service) RegisterUser(username, password, email, name, lastName string) (*User, error) {
	hashedPassword, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     username,
		PasswordHash: hashedPassword,
		Email:        email,
		Name:         name,
		LastName:     lastName,
	}

	if err := s.repository.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate checks the credential pair and returns the matching user.
// Callers must not distinguish ErrUserNotFound from ErrInvalidPassword in
// responses to avoid user enumeration.
func (s *Service) Authenticate(username, password string) (*User, error) {
	user, err := s.repository.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.HashPassword("dummy") // Prevent timing attacks
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !s.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	return user, nil
}
