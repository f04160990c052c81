package accounts

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/transdom/transdom/internal/cache"
	"github.com/transdom/transdom/internal/errs"
	"github.com/transdom/transdom/internal/models"
)

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateAdmin(ctx context.Context, a *models.Admin) (*models.Admin, error)
	GetAdminByName(ctx context.Context, name string) (*models.Admin, error)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

// Session is the authenticated principal behind a bearer token.
type Session struct {
	Email string `json:"email"`
	Kind  string `json:"kind"`
}

const (
	KindUser  = "user"
	KindAdmin = "admin"
)

type Options struct {
	SessionTTL         time.Duration
	LoginRatePerMinute int64
}

type Service struct {
	repo     Repository
	sessions cache.BytesCache
	limiter  RateLimiter

	sessionTTL time.Duration
	loginRate  int64
}

var validate = validator.New()

func New(repo Repository, sessions cache.BytesCache, limiter RateLimiter, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 24 * time.Hour
	}
	if opts.LoginRatePerMinute <= 0 {
		opts.LoginRatePerMinute = 10
	}
	return &Service{
		repo:       repo,
		sessions:   sessions,
		limiter:    limiter,
		sessionTTL: opts.SessionTTL,
		loginRate:  opts.LoginRatePerMinute,
	}
}

type UserSignup struct {
	Email       string
	Password    string
	Firstname   string
	Lastname    string
	Gender      string
	PhoneNumber string
	Country     string
}

func (s *Service) SignupUser(ctx context.Context, in UserSignup) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return nil, errs.Validationf("%q is not a valid email address", in.Email)
	}
	if len(in.Password) < 8 {
		return nil, errs.Validationf("password must be at least 8 characters")
	}
	if in.Firstname == "" || in.Lastname == "" {
		return nil, errs.Validationf("firstname and lastname are required")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, &models.User{
		Email:        in.Email,
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Gender:       in.Gender,
		PhoneNumber:  in.PhoneNumber,
		Country:      in.Country,
		PasswordHash: hash,
	})
}

// LoginUser checks credentials and opens a session. Lookup and password
// failures come back as the same auth error so the endpoint does not reveal
// which emails exist.
func (s *Service) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.allowLogin(ctx, "login:user:"+email); err != nil {
		return "", nil, err
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", nil, errs.Authf("invalid email or password")
		}
		return "", nil, err
	}
	if !checkPassword(u.PasswordHash, password) {
		return "", nil, errs.Authf("invalid email or password")
	}

	token, err := s.openSession(ctx, Session{Email: u.Email, Kind: KindUser})
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) SignupAdmin(ctx context.Context, name, password string) (*models.Admin, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Validationf("name is required")
	}
	if len(password) < 8 {
		return nil, errs.Validationf("password must be at least 8 characters")
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateAdmin(ctx, &models.Admin{Name: name, PasswordHash: hash})
}

func (s *Service) LoginAdmin(ctx context.Context, name, password string) (string, *models.Admin, error) {
	name = strings.TrimSpace(name)
	if err := s.allowLogin(ctx, "login:admin:"+name); err != nil {
		return "", nil, err
	}

	a, err := s.repo.GetAdminByName(ctx, name)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", nil, errs.Authf("invalid name or password")
		}
		return "", nil, err
	}
	if !checkPassword(a.PasswordHash, password) {
		return "", nil, errs.Authf("invalid name or password")
	}

	token, err := s.openSession(ctx, Session{Email: a.Name, Kind: KindAdmin})
	if err != nil {
		return "", nil, err
	}
	return token, a, nil
}

// SessionFromToken resolves a bearer token. Unknown or expired tokens are an
// auth error.
func (s *Service) SessionFromToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errs.Authf("missing bearer token")
	}
	b, ok, err := s.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		return nil, errors.Wrap(err, "session lookup")
	}
	if !ok {
		return nil, errs.Authf("invalid or expired token")
	}
	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Del(ctx, sessionKey(token))
}

func (s *Service) allowLogin(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, _, err := s.limiter.Allow(ctx, key, s.loginRate, time.Minute)
	if err != nil {
		// A broken limiter must not lock everyone out.
		return nil
	}
	if !allowed {
		return errs.RateLimitedf("too many login attempts, try again later")
	}
	return nil
}

func (s *Service) openSession(ctx context.Context, sess Session) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return "", errors.Wrap(err, "encode session")
	}
	if err := s.sessions.Set(ctx, sessionKey(token), b, s.sessionTTL); err != nil {
		return "", errors.Wrap(err, "store session")
	}
	return token, nil
}

func sessionKey(token string) string {
	return "session:" + token
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Wrap(err, "generate token")
	}
	return hex.EncodeToString(b), nil
}

// bcrypt only reads the first 72 bytes, and recent versions reject anything
// longer outright. Truncate so oversized passwords keep working.
func hashPassword(password string) (string, error) {
	pw := []byte(password)
	if len(pw) > 72 {
		pw = pw[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(pw, bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	pw := []byte(password)
	if len(pw) > 72 {
		pw = pw[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), pw) == nil
}
