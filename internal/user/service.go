package user

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/pingliu/service-rental-go/internal/user/entity"
	"github.com/pingliu/service-rental-go/pkg/utilities"
)

// PasswordHasher hashes and verifies passwords. Hash output is
// self-describing: Verify works for any cost the hash was created with.
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation. bcrypt embeds a per-call random salt in the
// returned hash and compares in constant time.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Repository is the credential store consumed by the service.
type Repository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByLogin(ctx context.Context, account string) (*entity.User, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetCredential(ctx context.Context, id int64) (string, error)
	CheckTaken(ctx context.Context, username, phone string) (usernameTaken, phoneTaken bool, err error)
	UpdateProfile(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateAvatar(ctx context.Context, id int64, avatarURL string) error
}

// Service orchestrates account lifecycle flows: register, login and
// profile update including the guarded password change.
type Service struct {
	repo   Repository
	hasher PasswordHasher
}

func NewService(r Repository, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &Service{repo: r, hasher: hasher}
}

var phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

// RegisterInput is the registration payload after JSON decoding.
type RegisterInput struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Phone           string `json:"phone"`
	RealName        string `json:"realName"`
	Avatar          string `json:"avatar"`
	Gender          string `json:"gender"`
	Birthday        string `json:"birthday"`
}

func (in *RegisterInput) validate() error {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" {
		return invalid("username must not be empty")
	}
	if n := utf8.RuneCountInString(in.Username); n < 3 || n > 15 {
		return invalid("username must be 3-15 characters")
	}
	if len(in.Password) < 6 || len(in.Password) > 16 {
		return invalid("password must be 6-16 characters")
	}
	if !phonePattern.MatchString(in.Phone) {
		return invalid("please enter a valid phone number")
	}
	if in.ConfirmPassword != in.Password {
		return invalid("the two passwords do not match")
	}
	if in.Gender != "" && in.Gender != "male" && in.Gender != "female" {
		return invalid("gender must be male or female")
	}
	return nil
}

// Register validates input, checks both uniqueness fields (naming the one
// that collided) and creates the account with role user, status normal and
// the default sesame credit. The plaintext password is hashed exactly once
// here; the unique indexes are the final arbiter under concurrent
// registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	usernameTaken, phoneTaken, err := s.repo.CheckTaken(ctx, in.Username, in.Phone)
	if err != nil {
		return nil, err
	}
	if usernameTaken {
		return nil, ErrUsernameTaken
	}
	if phoneTaken {
		return nil, ErrPhoneTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		ID:           utilities.NewID(),
		Username:     in.Username,
		PasswordHash: hash,
		RealName:     in.RealName,
		Phone:        in.Phone,
		Gender:       in.Gender,
		Birthday:     in.Birthday,
		SesameCredit: 600,
		Status:       entity.StatusNormal,
		Role:         entity.RoleUser,
	}
	if in.Avatar != "" {
		u.Avatar = &in.Avatar
	}
	if u.Gender == "" {
		u.Gender = "male"
	}
	if u.Birthday == "" {
		u.Birthday = "1900-01-01"
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	u.PasswordHash = ""
	return u, nil
}

// Authenticate locates the account by username or phone and verifies the
// password. A disabled account is rejected before the password check so the
// caller can distinguish it; an absent account and a wrong password are
// both terminal.
func (s *Service) Authenticate(ctx context.Context, account, password string) (*entity.User, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, invalid("account must not be empty")
	}
	if password == "" {
		return nil, invalid("password must not be empty")
	}

	u, err := s.repo.GetByLogin(ctx, account)
	if err != nil {
		return nil, err
	}
	if u.Status == entity.StatusDisabled {
		return nil, ErrAccountDisabled
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrWrongPassword
	}
	u.PasswordHash = ""
	return u, nil
}

// GetByID returns the account for the given identifier.
func (s *Service) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateInput is a partial profile update: only non-nil fields mutate the
// record. A non-nil Password triggers the guarded password change.
type UpdateInput struct {
	Username        *string `json:"username"`
	Phone           *string `json:"phone"`
	RealName        *string `json:"realName"`
	Gender          *string `json:"gender"`
	Birthday        *string `json:"birthday"`
	AlipayAccount   *string `json:"alipayAccount"`
	OldPassword     *string `json:"oldPassword"`
	Password        *string `json:"password"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (in *UpdateInput) validate() error {
	if in.Username != nil {
		*in.Username = strings.TrimSpace(*in.Username)
		if n := utf8.RuneCountInString(*in.Username); n < 3 || n > 15 {
			return invalid("username must be 3-15 characters")
		}
	}
	if in.Phone != nil && !phonePattern.MatchString(*in.Phone) {
		return invalid("please enter a valid phone number")
	}
	if in.Gender != nil && *in.Gender != "male" && *in.Gender != "female" {
		return invalid("gender must be male or female")
	}
	if in.Password != nil {
		if len(*in.Password) < 6 {
			return invalid("new password must be at least 6 characters")
		}
		if in.OldPassword == nil || *in.OldPassword == "" {
			return invalid("please enter the original password")
		}
		if in.ConfirmPassword != nil && *in.ConfirmPassword != *in.Password {
			return invalid("the two new passwords do not match")
		}
	}
	return nil
}

// UpdateProfile applies a partial update to the given account. All
// validation, uniqueness checks and the old-password re-verification happen
// before any mutation is persisted. The new password flows through the
// repository's dedicated hash write path, so it is hashed exactly once.
func (s *Service) UpdateProfile(ctx context.Context, current *entity.User, in UpdateInput) (*entity.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.Username != nil && *in.Username != current.Username {
		taken, _, err := s.repo.CheckTaken(ctx, *in.Username, "")
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}
	if in.Phone != nil && *in.Phone != current.Phone {
		_, taken, err := s.repo.CheckTaken(ctx, "", *in.Phone)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrPhoneTaken
		}
	}

	var newHash string
	if in.Password != nil {
		stored, err := s.repo.GetCredential(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if !s.hasher.Verify(stored, *in.OldPassword) {
			return nil, ErrOldPasswordWrong
		}
		newHash, err = s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, err
		}
	}

	updated := *current
	if in.Username != nil {
		updated.Username = *in.Username
	}
	if in.Phone != nil {
		updated.Phone = *in.Phone
	}
	if in.RealName != nil {
		updated.RealName = *in.RealName
	}
	if in.Gender != nil {
		updated.Gender = *in.Gender
	}
	if in.Birthday != nil {
		updated.Birthday = *in.Birthday
	}
	if in.AlipayAccount != nil {
		updated.AlipayAccount = *in.AlipayAccount
	}
	if err := s.repo.UpdateProfile(ctx, &updated); err != nil {
		return nil, err
	}
	if newHash != "" {
		if err := s.repo.UpdatePassword(ctx, current.ID, newHash); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, current.ID)
}

// UpdateAvatar records the stored avatar URL for the account.
func (s *Service) UpdateAvatar(ctx context.Context, id int64, avatarURL string) (*entity.User, error) {
	if err := s.repo.UpdateAvatar(ctx, id, avatarURL); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
