package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"task-management-app/domain"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type TokenClaims struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Exp   int64  `json:"exp"`
}

type AuthService struct {
	users      domain.UserRepository
	secretKey  []byte
	tokenTTL   time.Duration
	bcryptCost int
	logger     *log.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

func NewAuthService(users domain.UserRepository, secretKey string, tokenTTL time.Duration, bcryptCost int, logger *log.Logger, tracer trace.Tracer) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		secretKey:  []byte(secretKey),
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
		tracer:     tracer,
		now:        now,
	}
}

// Register creates an account and returns a token for it, so a fresh user
// is logged in straight away.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Auth.Register")
	defer span.End()

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	v := &domain.ValidationError{}
	if name == "" {
		v.Add("name", "Name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		v.Add("email", "Please include a valid email")
	}
	if len(password) < minPasswordLength {
		v.Add("password", fmt.Sprintf("Please enter a password with %d or more characters", minPasswordLength))
	}
	if err := v.Err(); err != nil {
		return "", domain.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return "", domain.User{}, domain.ErrUserAlreadyExists()
	} else if !errors.Is(err, domain.ErrUserNotFound()) {
		span.SetStatus(codes.Error, err.Error())
		return "", domain.User{}, err
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", domain.User{}, err
	}

	user, err := s.users.Insert(ctx, domain.User{
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: s.now(),
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", domain.User{}, err
	}

	token, err := s.CreateToken(user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", domain.User{}, err
	}

	s.logger.Info("user registered", "id", user.Id)
	return token, user, nil
}

func (s *AuthService) LogIn(ctx context.Context, email, password string) (string, domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Auth.LogIn")
	defer span.End()

	v := &domain.ValidationError{}
	email = normalizeEmail(email)
	if email == "" {
		v.Add("email", "Please include a valid email")
	}
	if password == "" {
		v.Add("password", "Password is required")
	}
	if err := v.Err(); err != nil {
		return "", domain.User{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound()) {
		return "", domain.User{}, domain.ErrInvalidCredentials()
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", domain.User{}, err
	}

	if !CheckPasswordHash(password, user.Password) {
		return "", domain.User{}, domain.ErrInvalidCredentials()
	}

	token, err := s.CreateToken(*user)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", domain.User{}, err
	}
	return token, *user, nil
}

// Me resolves the account behind an authenticated owner id.
func (s *AuthService) Me(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "Auth.Me")
	defer span.End()

	user, err := s.users.GetById(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return user, nil
}

func (s *AuthService) CreateToken(user domain.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"id":    user.Id,
			"name":  user.Name,
			"email": user.Email,
			"exp":   s.now().Add(s.tokenTTL).Unix(),
		})

	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken checks signature and expiry. Every failure is reported as
// ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken()
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidToken()
	}

	tokenClaims := &TokenClaims{}
	if id, ok := (*claims)["id"].(string); ok {
		tokenClaims.Id = id
	}
	if name, ok := (*claims)["name"].(string); ok {
		tokenClaims.Name = name
	}
	if email, ok := (*claims)["email"].(string); ok {
		tokenClaims.Email = email
	}
	if exp, ok := (*claims)["exp"].(float64); ok {
		tokenClaims.Exp = int64(exp)
	}

	if tokenClaims.Id == "" {
		return nil, domain.ErrInvalidToken()
	}
	return tokenClaims, nil
}

func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
