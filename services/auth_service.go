package services

import (
	"context"
	"errors"
	"strings"

	"github.com/ead/authuser/models"
	"github.com/ead/authuser/repositories"
	"github.com/ead/authuser/security"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs identity tokens for principals
type TokenIssuer interface {
	Issue(p *security.Principal) (string, error)
}

// PrincipalLookup resolves principals by username
type PrincipalLookup interface {
	ResolveByUsername(ctx context.Context, username string) (*security.Principal, error)
}

// EventPublisher queues user lifecycle events
type EventPublisher interface {
	PublishUser(action models.ActionType, user *models.User) error
}

// RegisterInput holds the fields of a new account
type RegisterInput struct {
	Username    string
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
	CPF         string
	ImageURL    string
}

// LoginResult is returned on successful sign-in
type LoginResult struct {
	Token string
	Type  string
}

// AuthService registers accounts and signs users in
type AuthService struct {
	users      repositories.UserRepository
	roles      repositories.RoleRepository
	txManager  repositories.TransactionManager
	principals PrincipalLookup
	tokens     TokenIssuer
	publisher  EventPublisher
	bcryptCost int
	dummyHash  []byte
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users repositories.UserRepository,
	roles repositories.RoleRepository,
	txManager repositories.TransactionManager,
	principals PrincipalLookup,
	tokens TokenIssuer,
	publisher EventPublisher,
	bcryptCost int,
	logger *zap.Logger,
) *AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	// Only fails for an out-of-range cost, which Register would report anyway.
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcryptCost)
	return &AuthService{
		users:      users,
		roles:      roles,
		txManager:  txManager,
		principals: principals,
		tokens:     tokens,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		dummyHash:  dummyHash,
		logger:     logger,
	}
}

// Register creates a regular account holding ROLE_USER
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.register(ctx, in, models.RoleUser, models.UserTypeUser)
}

// RegisterAdmin creates an administrator account holding ROLE_ADMIN
func (s *AuthService) RegisterAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.register(ctx, in, models.RoleAdmin, models.UserTypeAdmin)
}

func (s *AuthService) register(ctx context.Context, in RegisterInput, roleName models.RoleType, userType models.UserType) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if taken, err := s.users.ExistsByUsername(ctx, in.Username); err != nil {
		return nil, WrapInternal("failed to check username", err)
	} else if taken {
		return nil, ErrDuplicateUsername.WithDetail("username", in.Username)
	}

	if taken, err := s.users.ExistsByEmail(ctx, in.Email); err != nil {
		return nil, WrapInternal("failed to check email", err)
	} else if taken {
		return nil, ErrDuplicateEmail.WithDetail("email", in.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, WrapInternal("failed to hash password", err)
	}

	user := models.NewUser(in.Username, in.Email, string(hash), in.FullName, userType)
	user.PhoneNumber = in.PhoneNumber
	user.CPF = in.CPF
	user.ImageURL = in.ImageURL

	err = WithTransaction(ctx, s.txManager, func(ctx context.Context, tx repositories.Transaction) error {
		role, err := s.roles.WithTx(tx).GetByName(ctx, roleName)
		if err != nil {
			return mapRepoError(err, ErrRoleNotFound, "failed to load role")
		}

		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return mapRepoError(err, ErrUserNotFound, "failed to create user")
		}

		if err := s.roles.WithTx(tx).AssignToUser(ctx, user.ID, role.ID); err != nil {
			return WrapInternal("failed to assign role", err)
		}

		user.Roles = []models.Role{*role}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("type", string(user.Type)))

	s.publish(models.ActionCreate, user)
	return user, nil
}

// Login verifies the credentials and returns a signed bearer token.
// Unknown usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	principal, err := s.principals.ResolveByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, security.ErrPrincipalNotFound) {
			// Burn a comparison so unknown usernames take as long as bad passwords.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrBadCredentials
		}
		return nil, WrapInternal("failed to resolve user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(principal.Credential()), []byte(password)); err != nil {
		s.logger.Info("login rejected", zap.String("user_id", principal.ID.String()))
		return nil, ErrBadCredentials
	}

	token, err := s.tokens.Issue(principal)
	if err != nil {
		return nil, WrapInternal("failed to issue token", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", principal.ID.String()))
	return &LoginResult{Token: token, Type: "Bearer"}, nil
}

func (s *AuthService) publish(action models.ActionType, user *models.User) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishUser(action, user); err != nil {
		s.logger.Warn("failed to publish user event",
			zap.String("action", string(action)),
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}

// mapRepoError converts repository sentinels into domain errors
func mapRepoError(err error, notFound *DomainError, op string) error {
	var domainErr *DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, repositories.ErrNotFound):
		return notFound
	case errors.Is(err, repositories.ErrDuplicate):
		return NewDomainError(ErrorTypeConflict, "record already exists", err)
	default:
		return WrapInternal(op, err)
	}
}
