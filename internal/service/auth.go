package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aidar/kickoff/internal/domain"
	"github.com/aidar/kickoff/internal/repository"
)

const minPasswordLength = 6

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// RegisterInput holds the fields of a new account
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	SkillLevel int
	Positions  []string
}

// UpdateAccountInput holds profile changes. Nil fields are left as they are; the
// password changes only when NewPassword is set and OldPassword matches.
type UpdateAccountInput struct {
	Name        *string
	Email       *string
	SkillLevel  *int
	Positions   []string
	OldPassword string
	NewPassword string
}

// AuthService handles registration, login, account changes and JWT operations.
// Every issued token is recorded; a token whose record is gone is rejected.
type AuthService struct {
	userRepo  repository.UserRepository
	tokens    repository.TokenRepository
	jwtSecret string
	jwtExpiry time.Duration
	clock     clock.Clock
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	tokens repository.TokenRepository,
	jwtSecret string,
	jwtExpiry time.Duration,
	clock clock.Clock,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokens:    tokens,
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
		clock:     clock,
		logger:    logger,
	}
}

// Register creates an account and returns it together with a signed token
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var problems []string
	if name == "" {
		problems = append(problems, "name is required")
	}
	if !emailPattern.MatchString(email) {
		problems = append(problems, "email is invalid")
	}
	if len(in.Password) < minPasswordLength {
		problems = append(problems, passwordTooShort())
	}
	if !validSkill(in.SkillLevel) {
		problems = append(problems, skillOutOfRange())
	}
	positions, problem := normalizePositions(in.Positions)
	if problem != "" {
		problems = append(problems, problem)
	}
	if len(problems) > 0 {
		return nil, "", fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		UserID:       uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		SkillLevel:   in.SkillLevel,
		Positions:    positions,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, user.UserID)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered", "user_id", user.UserID, "skill_level", user.SkillLevel)
	return user, token, nil
}

// Login verifies the credentials and returns the user with a fresh token
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Unknown email and wrong password look the same to the caller
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUnauthorized
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Failed login attempt", "user_id", user.UserID)
		return nil, "", domain.ErrUnauthorized
	}

	token, err := s.issueToken(ctx, user.UserID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// UpdateAccount applies profile changes for the user. A taken email returns
// ErrEmailTaken and a wrong old password returns ErrUnauthorized.
func (s *AuthService) UpdateAccount(ctx context.Context, userID string, in UpdateAccountInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var problems []string
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			user.Name = name
		} else {
			problems = append(problems, "name is required")
		}
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if emailPattern.MatchString(email) {
			user.Email = email
		} else {
			problems = append(problems, "email is invalid")
		}
	}
	if in.SkillLevel != nil {
		if validSkill(*in.SkillLevel) {
			user.SkillLevel = *in.SkillLevel
		} else {
			problems = append(problems, skillOutOfRange())
		}
	}
	if in.Positions != nil {
		positions, problem := normalizePositions(in.Positions)
		if problem != "" {
			problems = append(problems, problem)
		} else {
			user.Positions = positions
		}
	}

	changePassword := in.OldPassword != "" || in.NewPassword != ""
	if changePassword {
		switch {
		case in.OldPassword == "" || in.NewPassword == "":
			problems = append(problems, "old and new password are both required to change the password")
		case len(in.NewPassword) < minPasswordLength:
			problems = append(problems, passwordTooShort())
		}
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}

	if changePassword {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)); err != nil {
			s.logger.Warn("Password change with wrong old password", "user_id", userID)
			return nil, domain.ErrUnauthorized
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Account updated", "user_id", userID, "password_changed", changePassword)
	return user, nil
}

// Logout revokes the token. Tokens that do not parse have nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil
	}
	if err := s.tokens.Delete(ctx, claims.ID); err != nil {
		return err
	}

	s.logger.Info("User logged out", "user_id", claims.UserID)
	return nil
}

// RevokeAll revokes every token issued to the user
func (s *AuthService) RevokeAll(ctx context.Context, userID string) error {
	return s.tokens.DeleteByUser(ctx, userID)
}

// ValidateToken validates a JWT token and returns claims. Revoked tokens are
// rejected with ErrInvalidToken.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return nil, err
	}

	ok, err := s.tokens.Exists(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

func (s *AuthService) parseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.clock.Now))

	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// TokenTTL returns how long issued tokens stay valid
func (s *AuthService) TokenTTL() time.Duration {
	return s.jwtExpiry
}

func (s *AuthService) issueToken(ctx context.Context, userID string) (string, error) {
	now := s.clock.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	issued := domain.IssuedToken{
		TokenID:   claims.ID,
		UserID:    userID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.tokens.Save(ctx, issued); err != nil {
		return "", err
	}
	if err := s.tokens.DeleteExpired(ctx, now); err != nil {
		s.logger.Warn("Failed to purge expired tokens", "error", err)
	}

	return tokenString, nil
}

func passwordTooShort() string {
	return fmt.Sprintf("password must be at least %d characters", minPasswordLength)
}

func validSkill(level int) bool {
	return level >= domain.MinSkillLevel && level <= domain.MaxSkillLevel
}

func skillOutOfRange() string {
	return fmt.Sprintf("skill level must be between %d and %d", domain.MinSkillLevel, domain.MaxSkillLevel)
}

// normalizePositions returns the cleaned tags or a validation problem
func normalizePositions(tags []string) ([]string, string) {
	positions, ok := domain.NormalizePositions(tags)
	switch {
	case !ok:
		return nil, "position must be goalie or outfielder"
	case len(positions) == 0:
		return nil, "at least one position is required"
	}
	return positions, ""
}
