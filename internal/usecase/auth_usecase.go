package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// パスワードのハッシュ化と照合
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash string, plain string) error
}

// アクセストークンの発行（実装はcmd/api側）
type TokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error)
}

type bcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) PasswordHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *bcryptHasher) Verify(hash string, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthUsecase struct {
	users  repo.UserRepository
	hasher PasswordHasher
	issuer TokenIssuer
}

func NewAuthUsecase(users repo.UserRepository, hasher PasswordHasher, issuer TokenIssuer) *AuthUsecase {
	return &AuthUsecase{users: users, hasher: hasher, issuer: issuer}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserOutput struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginOutput struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      UserOutput `json:"user"`
}

// 会員登録。roleは登録時に確定し、ADMINは自己申告できない
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserOutput, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	//入力チェック
	if name == "" {
		return UserOutput{}, NewValidationError("user", "name is required")
	}
	if !emailPattern.MatchString(email) {
		return UserOutput{}, NewValidationError("user", "invalid email")
	}
	if len(in.Password) < 8 {
		return UserOutput{}, NewValidationError("user", "password must be at least 8 characters")
	}

	role := model.Role(in.Role)
	if role == "" {
		role = model.RoleBuyer
	}
	if role != model.RoleBuyer && role != model.RoleSeller {
		return UserOutput{}, NewValidationError("user", "role must be BUYER or SELLER")
	}

	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return UserOutput{}, NewInternalError()
	}

	user := model.User{
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         role,
	}

	if err := u.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return UserOutput{}, NewConflictError("user", "email already registered")
		}
		return UserOutput{}, NewInternalError()
	}

	return toUserOutput(user), nil
}

// ログイン。失敗理由は区別せず同じ文言で返す
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewValidationError("auth", "email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoginOutput{}, NewAuthenticationError("invalid credentials")
		}
		return LoginOutput{}, NewInternalError()
	}

	if err := u.hasher.Verify(user.PasswordHash, in.Password); err != nil {
		return LoginOutput{}, NewAuthenticationError("invalid credentials")
	}

	token, expiresAt, err := u.issuer.Issue(user.ID, user.Role, time.Now())
	if err != nil {
		return LoginOutput{}, NewInternalError()
	}

	return LoginOutput{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserOutput(user),
	}, nil
}

// 自分のプロフィール
func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserOutput, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return UserOutput{}, NewNotFoundError("user")
		}
		return UserOutput{}, NewInternalError()
	}
	return toUserOutput(user), nil
}

func toUserOutput(u model.User) UserOutput {
	return UserOutput{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
