package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"shop-backend/internal/model"
	"shop-backend/internal/token"
	"shop-backend/internal/util"
	"shop-backend/pkg/apierror"
)

// AuthService runs the session lifecycle: sign-up, sign-in, refresh with
// rotation, social login, sign-out and the per-request token check.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	issuer     *token.Issuer
	mailer     Mailer
	audit      *AuditService
	bcryptCost int
	now        func() time.Time
	newCode    func() (string, error)
}

func NewAuthService(users UserStore, sessions SessionStore, issuer *token.Issuer, mailer Mailer, audit *AuditService, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.MinCost
	}

	return &AuthService{
		users:      users,
		sessions:   sessions,
		issuer:     issuer,
		mailer:     mailer,
		audit:      audit,
		bcryptCost: bcryptCost,
		now:        time.Now,
		newCode:    verificationCode,
	}
}

// SignUp dispatches on the requested role. Only customers may register
// themselves; admin accounts go through SignUpAdmin.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (model.PublicUser, error) {
	role, ok := model.ParseRole(req.Role)
	if !ok || role != model.RoleCustomer {
		return model.PublicUser{}, apierror.BadRequest("unknown role", req.Role)
	}
	return s.SignUpCustomer(ctx, req)
}

func (s *AuthService) SignUpCustomer(ctx context.Context, req model.SignUpRequest) (model.PublicUser, error) {
	req, err := normalizeSignUp(req)
	if err != nil {
		return model.PublicUser{}, err
	}
	email, password := req.Email, req.Password

	actor := model.AuditActor{Email: email, Role: string(model.RoleCustomer)}

	_, err = s.users.FindByEmailAndRole(ctx, email, model.RoleCustomer)
	switch {
	case err == nil:
		s.audit.Log(ctx, model.AuditActionSignUp, actor, model.AuditStatusFailure, email, "email registered")
		return model.PublicUser{}, errEmailRegistered()
	case !errors.Is(err, model.ErrUserNotFound):
		return model.PublicUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := profileFromRequest(req)
	user.Email = email
	user.PasswordHash = string(hash)
	user.Role = model.RoleCustomer
	user.Status = model.StatusVerified
	user.DateCreated = s.now().UTC()

	created, err := s.users.Create(ctx, user)
	if errors.Is(err, model.ErrUserAlreadyExists) {
		s.audit.Log(ctx, model.AuditActionSignUp, actor, model.AuditStatusFailure, email, "email registered")
		return model.PublicUser{}, errEmailRegistered()
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	actor.UserID = created.ID.Hex()
	s.audit.Log(ctx, model.AuditActionSignUp, actor, model.AuditStatusSuccess, email, "")
	return created.Public(), nil
}

// SignUpAdmin finds or creates the admin record, then issues a fresh
// verification code and mails it. The account stays Not Verified until the
// code is redeemed.
func (s *AuthService) SignUpAdmin(ctx context.Context, req model.SignUpRequest) (model.PublicUser, error) {
	req, err := normalizeSignUp(req)
	if err != nil {
		return model.PublicUser{}, err
	}
	email, password := req.Email, req.Password

	admin, err := s.users.FindByEmailAndRole(ctx, email, model.RoleAdmin)
	if errors.Is(err, model.ErrUserNotFound) {
		hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
		if hashErr != nil {
			return model.PublicUser{}, fmt.Errorf("hash password: %w", hashErr)
		}

		user := profileFromRequest(req)
		user.Email = email
		user.PasswordHash = string(hash)
		user.Role = model.RoleAdmin
		user.Status = model.StatusNotVerified
		user.DateCreated = s.now().UTC()

		admin, err = s.users.Create(ctx, user)
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	code, err := s.newCode()
	if err != nil {
		return model.PublicUser{}, fmt.Errorf("generate verification code: %w", err)
	}

	updated, err := s.users.SetVerification(ctx, admin.ID.Hex(), code, model.StatusNotVerified)
	if err != nil {
		return model.PublicUser{}, err
	}

	if s.mailer != nil {
		if err := s.mailer.SendVerificationCode(ctx, updated.Email, code); err != nil {
			slog.Warn("verification email not sent", "email", updated.Email, "error", err)
		}
	}

	s.audit.Log(ctx, model.AuditActionSignUpAdmin, actorFromUser(updated), model.AuditStatusSuccess, updated.Email, "")
	return updated.Public(), nil
}

// VerifyCode redeems a verification code for the given role. Codes are
// single-use.
func (s *AuthService) VerifyCode(ctx context.Context, role model.Role, code string) (model.PublicUser, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return model.PublicUser{}, apierror.BadRequest("verification code is required", "")
	}

	user, err := s.users.ConsumeVerificationCode(ctx, code, role)
	if errors.Is(err, model.ErrVerificationCodeNotFound) {
		s.audit.Log(ctx, model.AuditActionVerify, model.AuditActor{Role: string(role)}, model.AuditStatusFailure, "", "unknown code")
		return model.PublicUser{}, apierror.BadRequest("verification code is invalid", "")
	}
	if err != nil {
		return model.PublicUser{}, err
	}

	s.audit.Log(ctx, model.AuditActionVerify, actorFromUser(user), model.AuditStatusSuccess, user.Email, "")
	return user.Public(), nil
}

// SignIn checks the record exists before comparing the password, so a missing
// user never reaches bcrypt. No session is created on any failure.
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (model.SignInResult, error) {
	role := model.RoleCustomer
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := model.ParseRole(req.Role)
		if !ok {
			return model.SignInResult{}, apierror.BadRequest("unknown role", req.Role)
		}
		role = parsed
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	actor := model.AuditActor{Email: email, Role: string(role)}

	user, err := s.users.FindByEmailAndRole(ctx, email, role)
	if errors.Is(err, model.ErrUserNotFound) {
		s.audit.Log(ctx, model.AuditActionSignIn, actor, model.AuditStatusFailure, email, "user not found")
		return model.SignInResult{}, apierror.New("NOT_FOUND", "user was not found", "", http.StatusBadRequest)
	}
	if err != nil {
		return model.SignInResult{}, err
	}

	actor.UserID = user.ID.Hex()

	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.audit.Log(ctx, model.AuditActionSignIn, actor, model.AuditStatusFailure, email, "password wrong")
		return model.SignInResult{}, apierror.New("INVALID_CREDENTIAL", "password wrong", "", http.StatusBadRequest)
	}

	if user.Status != model.StatusVerified {
		s.audit.Log(ctx, model.AuditActionSignIn, actor, model.AuditStatusFailure, email, "user not verified")
		return model.SignInResult{}, apierror.New("UNVERIFIED", "user not verified", string(user.Status), http.StatusBadRequest)
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return model.SignInResult{}, err
	}

	s.audit.Log(ctx, model.AuditActionSignIn, actor, model.AuditStatusSuccess, email, "")
	return model.SignInResult{
		Name:   user.Username,
		Email:  user.Email,
		Status: user.Status,
		Role:   user.Role,
		Tokens: tokens,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The old session is
// consumed in one conditional delete, so concurrent callers presenting the
// same token cannot both succeed.
func (s *AuthService) Refresh(ctx context.Context, authorization string) (model.TokenPair, error) {
	raw, ok := token.BearerToken(authorization)
	if !ok {
		return model.TokenPair{}, apierror.Unauthorized("not authorized")
	}

	claims, err := s.issuer.Verify(raw, model.TokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, err
	}

	actor := model.AuditActor{UserID: claims.UserID, Email: claims.Email, Role: string(claims.Role)}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		s.audit.Log(ctx, model.AuditActionRefresh, actor, model.AuditStatusFailure, claims.SessionID, "user not found")
		return model.TokenPair{}, apierror.Unauthorized("not authorized")
	}
	if err != nil {
		return model.TokenPair{}, err
	}

	if _, err := s.sessions.Consume(ctx, claims.SessionID, claims.UserID); err != nil {
		if errors.Is(err, model.ErrSessionNotFound) {
			s.audit.Log(ctx, model.AuditActionRefresh, actor, model.AuditStatusFailure, claims.SessionID, "session not found")
			return model.TokenPair{}, apierror.Unauthorized("not authorized")
		}
		return model.TokenPair{}, err
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.audit.Log(ctx, model.AuditActionRefresh, actor, model.AuditStatusSuccess, claims.SessionID, "")
	return tokens, nil
}

// SocialLogin signs in a customer vouched for by an identity provider,
// creating the record on first sight.
func (s *AuthService) SocialLogin(ctx context.Context, profile *model.SocialProfile) (model.SocialLoginResult, error) {
	if profile == nil || strings.TrimSpace(profile.Email) == "" {
		return model.SocialLoginResult{}, apierror.Unauthorized("not authorized")
	}

	email := strings.ToLower(strings.TrimSpace(profile.Email))
	provider := strings.ToLower(strings.TrimSpace(profile.Provider))

	user, err := s.users.FindByEmailRoleProvider(ctx, email, model.RoleCustomer, provider)
	isNew := false
	if errors.Is(err, model.ErrUserNotFound) {
		user, err = s.users.Create(ctx, model.User{
			Email:       email,
			SocialAuth:  provider,
			FirstName:   profile.FirstName,
			LastName:    profile.LastName,
			Role:        model.RoleCustomer,
			Username:    strings.SplitN(email, "@", 2)[0],
			AvatarURL:   profile.Picture,
			Status:      model.StatusNotRequiredVerified,
			DateCreated: s.now().UTC(),
		})
		isNew = true
	}
	if errors.Is(err, model.ErrUserAlreadyExists) {
		// A password account already owns (email, customer).
		s.audit.Log(ctx, model.AuditActionSocialLogin, model.AuditActor{Email: email}, model.AuditStatusFailure, provider, "email registered")
		return model.SocialLoginResult{}, errEmailRegistered()
	}
	if err != nil {
		return model.SocialLoginResult{}, err
	}

	tokens, err := s.startSession(ctx, user)
	if err != nil {
		return model.SocialLoginResult{}, err
	}

	s.audit.Log(ctx, model.AuditActionSocialLogin, actorFromUser(user), model.AuditStatusSuccess, provider, "")
	return model.SocialLoginResult{
		Name:         user.Username,
		Email:        user.Email,
		Status:       user.Status,
		Role:         user.Role,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		IsNew:        isNew,
		UserID:       user.ID.Hex(),
	}, nil
}

// SignOut deletes the session behind the caller's token. Signing out twice is
// not an error.
func (s *AuthService) SignOut(ctx context.Context, claims *model.AuthClaims) error {
	if claims == nil {
		return apierror.Unauthorized("authentication required")
	}

	actor := model.AuditActor{UserID: claims.UserID, Email: claims.Email, Role: string(claims.Role)}

	err := s.sessions.Delete(ctx, claims.SessionID)
	if err != nil && !errors.Is(err, model.ErrSessionNotFound) {
		return err
	}

	s.audit.Log(ctx, model.AuditActionSignOut, actor, model.AuditStatusSuccess, claims.SessionID, "")
	return nil
}

// Authenticate validates an access token and confirms its session is still
// live and owned by the token's user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.AuthClaims, error) {
	claims, err := s.issuer.Verify(accessToken, model.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if errors.Is(err, model.ErrSessionNotFound) {
		return nil, apierror.Unauthorized("session is no longer active")
	}
	if err != nil {
		return nil, err
	}

	if session.UserID.Hex() != claims.UserID {
		return nil, apierror.Unauthorized("not authorized")
	}

	return claims, nil
}

// SeedAdmin creates a verified admin when none exists yet.
func (s *AuthService) SeedAdmin(ctx context.Context, email string, password string) error {
	req, err := normalizeSignUp(model.SignUpRequest{Email: email, Password: password})
	if err != nil {
		return err
	}
	email = req.Email

	count, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Create(ctx, model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Username:     strings.SplitN(email, "@", 2)[0],
		Status:       model.StatusVerified,
		DateCreated:  s.now().UTC(),
	})
	if err != nil && !errors.Is(err, model.ErrUserAlreadyExists) {
		return err
	}

	slog.Info("default admin seeded", "email", email)
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user model.User) (model.TokenPair, error) {
	session, err := s.sessions.Create(ctx, user.ID.Hex(), s.now().Add(s.issuer.RefreshTTL()))
	if err != nil {
		return model.TokenPair{}, err
	}

	tokens, err := s.issuer.IssuePair(session, user)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID.Hex())
		return model.TokenPair{}, fmt.Errorf("issue token pair: %w", err)
	}

	return tokens, nil
}

// normalizeSignUp lowercases the email and runs the request's validation tags.
func normalizeSignUp(req model.SignUpRequest) (model.SignUpRequest, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := util.ValidateStruct(req); err != nil {
		return model.SignUpRequest{}, err
	}
	return req, nil
}

func profileFromRequest(req model.SignUpRequest) model.User {
	return model.User{
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		YearOfBirth: req.YearOfBirth,
		Country:     strings.TrimSpace(req.Country),
		City:        strings.TrimSpace(req.City),
		Username:    strings.TrimSpace(req.Username),
		Occupation:  strings.TrimSpace(req.Occupation),
		Hobby:       strings.TrimSpace(req.Hobby),
	}
}

func actorFromUser(user model.User) model.AuditActor {
	return model.AuditActor{UserID: user.ID.Hex(), Email: user.Email, Role: string(user.Role)}
}

func errEmailRegistered() error {
	return apierror.New("CONFLICT", "user customer with current email is registered", "", http.StatusBadRequest)
}

// verificationCode returns a six digit code in [100000, 999999].
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
