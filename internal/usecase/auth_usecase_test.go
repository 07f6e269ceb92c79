package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// Mock: UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUsernameOrEmail(ctx context.Context, username string, email string) (*model.User, error) {
	args := m.Called(ctx, username, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindActiveByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// =====================
// Mock: RefreshTokenRepository
// =====================

type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, rt *model.RefreshToken) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByTokenWithUser(ctx context.Context, tokenValue string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenValue)
	rt, _ := args.Get(0).(*model.RefreshToken)
	return rt, args.Error(1)
}

func (m *MockRefreshTokenRepository) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	args := m.Called(ctx, tokenID, usedAt)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// =====================
// Mock: AuthValidator
// =====================

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) ValidateRegister(username string, email string, password string) error {
	args := m.Called(username, email, password)
	return args.Error(0)
}

func (m *MockAuthValidator) ValidateLogin(username string, password string) error {
	args := m.Called(username, password)
	return args.Error(0)
}

// =====================
// Helper
// =====================

// Tx境界の検証は対象外なので、同じrepoをそのまま渡すだけのスタブ
type stubTxRepos struct {
	users repository.UserRepository
	rts   repository.RefreshTokenRepository
}

func (s stubTxRepos) Users() repository.UserRepository                 { return s.users }
func (s stubTxRepos) RefreshTokens() repository.RefreshTokenRepository { return s.rts }

type stubTxManager struct {
	repos stubTxRepos
}

func (m *stubTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	return fn(m.repos)
}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time { return c.t }

func newAuthUC(userRepo *MockUserRepository, rtRepo *MockRefreshTokenRepository, v *MockAuthValidator, clock Clock) *AuthUsecase {
	tx := &stubTxManager{repos: stubTxRepos{users: userRepo, rts: rtRepo}}
	hasher := crypto.NewBcryptHasher(crypto.DefaultBcryptCost)
	issuer := token.NewIssuer("test-secret")
	return NewAuthUsecase(userRepo, rtRepo, tx, hasher, issuer, clock, v)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	h, err := crypto.NewBcryptHasher(crypto.DefaultBcryptCost).Hash(plain)
	require.NoError(t, err)
	return h
}

// =====================
// Register
// =====================

func TestAuthUsecase_Register_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	clock := &fixedClock{t: time.Now()}

	v.On("ValidateRegister", "alice", "alice@test.com", "CorrectPW1").Return(nil)
	userRepo.On("FindByUsernameOrEmail", mock.Anything, "alice", "alice@test.com").Return(nil, nil)
	userRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		//平文が保存されていないこと・初期状態がactiveであることを見る
		return u.Username == "alice" &&
			u.Email == "alice@test.com" &&
			u.IsActive &&
			u.PasswordHash != "" &&
			u.PasswordHash != "CorrectPW1"
	})).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v, clock)

	resp, err := u.Register(ctx, RegisterInput{Username: "alice", Email: "alice@test.com", Password: "CorrectPW1"})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Equal(t, "alice@test.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)

	userRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// username重複はemail重複より先に判定される
func TestAuthUsecase_Register_DuplicateUsernameTakesPrecedence(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	v.On("ValidateRegister", "alice", "alice@test.com", "CorrectPW1").Return(nil)

	//usernameもemailも同じユーザーが既にいる
	userRepo.On("FindByUsernameOrEmail", mock.Anything, "alice", "alice@test.com").Return(&model.User{
		ID:       uuid.NewString(),
		Username: "alice",
		Email:    "alice@test.com",
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	resp, err := u.Register(ctx, RegisterInput{Username: "alice", Email: "alice@test.com", Password: "CorrectPW1"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	v.On("ValidateRegister", "alice", "taken@test.com", "CorrectPW1").Return(nil)

	//emailだけ一致（usernameは別人）
	userRepo.On("FindByUsernameOrEmail", mock.Anything, "alice", "taken@test.com").Return(&model.User{
		ID:       uuid.NewString(),
		Username: "bob",
		Email:    "taken@test.com",
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	resp, err := u.Register(ctx, RegisterInput{Username: "alice", Email: "taken@test.com", Password: "CorrectPW1"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

// 事前チェックの隙間で同時登録された場合はDB制約エラーを重複エラーに写す
func TestAuthUsecase_Register_ConstraintRace(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	v.On("ValidateRegister", "alice", "alice@test.com", "CorrectPW1").Return(nil)
	userRepo.On("FindByUsernameOrEmail", mock.Anything, "alice", "alice@test.com").Return(nil, nil)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicateEmail)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	resp, err := u.Register(ctx, RegisterInput{Username: "alice", Email: "alice@test.com", Password: "CorrectPW1"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestAuthUsecase_Register_ValidationError(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	wantErr := assert.AnError
	v.On("ValidateRegister", "al", "bad", "short").Return(wantErr)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	resp, err := u.Register(ctx, RegisterInput{Username: "al", Email: "bad", Password: "short"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, wantErr)

	//validatorで落ちたらrepoには触らない
	userRepo.AssertNotCalled(t, "FindByUsernameOrEmail", mock.Anything, mock.Anything, mock.Anything)
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()
	clock := &fixedClock{t: now}

	userID := uuid.NewString()

	v.On("ValidateLogin", "alice", "CorrectPW1").Return(nil)
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID:           userID,
		Username:     "alice",
		Email:        "alice@test.com",
		PasswordHash: mustHash(t, "CorrectPW1"),
		IsActive:     true,
	}, nil)

	rtRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		// 64byte乱数のhexは128文字。期限は発行時刻+10分
		return rt.UserID == userID &&
			len(rt.Token) == 128 &&
			rt.ExpiresAt.Equal(now.Add(10*time.Minute))
	})).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v, clock)

	bundle, err := u.Login(ctx, LoginInput{Username: "alice", Password: "CorrectPW1"})
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.AccessToken)
	assert.Len(t, bundle.RefreshToken, 128)
	assert.Equal(t, 300, bundle.ExpiresIn)
	assert.Equal(t, "Bearer", bundle.TokenType)

	//loginはuserを返す
	require.NotNil(t, bundle.User)
	assert.Equal(t, userID, bundle.User.ID)
	assert.Equal(t, "alice", bundle.User.Username)

	userRepo.AssertExpectations(t)
	rtRepo.AssertExpectations(t)
	v.AssertExpectations(t)
}

// 存在しないユーザーとパスワード違いは同じエラー（列挙対策）
func TestAuthUsecase_Login_UnknownUserAndWrongPassword_SameError(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	v.On("ValidateLogin", "ghost", "CorrectPW1").Return(nil)
	v.On("ValidateLogin", "alice", "WrongPW1").Return(nil)

	userRepo.On("FindByUsername", mock.Anything, "ghost").Return(nil, nil)
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID:           uuid.NewString(),
		Username:     "alice",
		PasswordHash: mustHash(t, "CorrectPW1"),
		IsActive:     true,
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	_, errUnknown := u.Login(ctx, LoginInput{Username: "ghost", Password: "CorrectPW1"})
	_, errWrongPW := u.Login(ctx, LoginInput{Username: "alice", Password: "WrongPW1"})

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPW, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPW)

	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 停止ユーザーはパスワード照合より前に弾かれる
func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	v.On("ValidateLogin", "alice", "CorrectPW1").Return(nil)
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID:           uuid.NewString(),
		Username:     "alice",
		PasswordHash: mustHash(t, "CorrectPW1"),
		IsActive:     false,
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	bundle, err := u.Login(ctx, LoginInput{Username: "alice", Password: "CorrectPW1"})
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrInactiveAccount)

	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// Refresh
// =====================

func activeUserForRefresh(userID string) model.User {
	return model.User{
		ID:       userID,
		Username: "alice",
		Email:    "alice@test.com",
		IsActive: true,
	}
}

func TestAuthUsecase_Refresh_Success(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()
	clock := &fixedClock{t: now}

	userID := uuid.NewString()
	oldTokenID := uuid.NewString()

	rtRepo.On("FindByTokenWithUser", mock.Anything, "old-refresh-token").Return(&model.RefreshToken{
		ID:        oldTokenID,
		Token:     "old-refresh-token",
		UserID:    userID,
		User:      activeUserForRefresh(userID),
		ExpiresAt: now.Add(5 * time.Minute),
	}, nil)

	rtRepo.On("MarkUsed", mock.Anything, oldTokenID, now).Return(nil)
	rtRepo.On("Create", mock.Anything, mock.MatchedBy(func(rt *model.RefreshToken) bool {
		return rt.UserID == userID &&
			rt.Token != "old-refresh-token" &&
			len(rt.Token) == 128 &&
			rt.ExpiresAt.Equal(now.Add(10*time.Minute))
	})).Return(nil)
	rtRepo.On("Revoke", mock.Anything, oldTokenID).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v, clock)

	bundle, err := u.Refresh(ctx, "old-refresh-token")
	require.NoError(t, err)

	assert.NotEmpty(t, bundle.AccessToken)
	assert.Len(t, bundle.RefreshToken, 128)
	assert.NotEqual(t, "old-refresh-token", bundle.RefreshToken)
	assert.Equal(t, 300, bundle.ExpiresIn)
	assert.Equal(t, "Bearer", bundle.TokenType)

	//refreshではuserを返さない
	assert.Nil(t, bundle.User)

	rtRepo.AssertExpectations(t)
}

func TestAuthUsecase_Refresh_UnknownToken(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	rtRepo.On("FindByTokenWithUser", mock.Anything, "unknown").Return(nil, repository.ErrRefreshTokenNotFound)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	bundle, err := u.Refresh(ctx, "unknown")
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthUsecase_Refresh_EmptyToken(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	bundle, err := u.Refresh(ctx, "")
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	rtRepo.AssertNotCalled(t, "FindByTokenWithUser", mock.Anything, mock.Anything)
}

// used_at付きトークンの再提示は再利用とみなす
func TestAuthUsecase_Refresh_Replay(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()

	userID := uuid.NewString()
	usedAt := now.Add(-time.Minute)

	rtRepo.On("FindByTokenWithUser", mock.Anything, "used-token").Return(&model.RefreshToken{
		ID:        uuid.NewString(),
		Token:     "used-token",
		UserID:    userID,
		User:      activeUserForRefresh(userID),
		ExpiresAt: now.Add(5 * time.Minute),
		UsedAt:    &usedAt,
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: now})

	bundle, err := u.Refresh(ctx, "used-token")
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)

	rtRepo.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything, mock.Anything)
	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_Refresh_RevokedToken(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()

	userID := uuid.NewString()

	rtRepo.On("FindByTokenWithUser", mock.Anything, "revoked-token").Return(&model.RefreshToken{
		ID:        uuid.NewString(),
		Token:     "revoked-token",
		UserID:    userID,
		User:      activeUserForRefresh(userID),
		ExpiresAt: now.Add(5 * time.Minute),
		Revoked:   true,
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: now})

	bundle, err := u.Refresh(ctx, "revoked-token")
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}

func TestAuthUsecase_Refresh_ExpiredToken(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()

	userID := uuid.NewString()

	rtRepo.On("FindByTokenWithUser", mock.Anything, "expired-token").Return(&model.RefreshToken{
		ID:        uuid.NewString(),
		Token:     "expired-token",
		UserID:    userID,
		User:      activeUserForRefresh(userID),
		ExpiresAt: now.Add(-time.Minute),
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: now})

	bundle, err := u.Refresh(ctx, "expired-token")
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrRefreshTokenExpired)

	rtRepo.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything, mock.Anything)
}

// tokenが有効でも所有ユーザーが停止済みなら拒否
func TestAuthUsecase_Refresh_InactiveUser(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()

	userID := uuid.NewString()
	inactive := activeUserForRefresh(userID)
	inactive.IsActive = false

	rtRepo.On("FindByTokenWithUser", mock.Anything, "valid-token").Return(&model.RefreshToken{
		ID:        uuid.NewString(),
		Token:     "valid-token",
		UserID:    userID,
		User:      inactive,
		ExpiresAt: now.Add(5 * time.Minute),
	}, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: now})

	bundle, err := u.Refresh(ctx, "valid-token")
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrInactiveAccount)
}

// 条件付きUPDATEで負けた側（0件更新）は再利用扱いになる
func TestAuthUsecase_Refresh_MarkUsedRace(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()

	userID := uuid.NewString()
	tokenID := uuid.NewString()

	rtRepo.On("FindByTokenWithUser", mock.Anything, "contested-token").Return(&model.RefreshToken{
		ID:        tokenID,
		Token:     "contested-token",
		UserID:    userID,
		User:      activeUserForRefresh(userID),
		ExpiresAt: now.Add(5 * time.Minute),
	}, nil)

	rtRepo.On("MarkUsed", mock.Anything, tokenID, now).Return(repository.ErrRefreshTokenNotFound)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: now})

	bundle, err := u.Refresh(ctx, "contested-token")
	assert.Nil(t, bundle)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)

	rtRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	rtRepo.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything)
}

// =====================
// Logout / CleanExpiredTokens / ValidateUser
// =====================

func TestAuthUsecase_Logout(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	userID := uuid.NewString()
	rtRepo.On("RevokeAllByUserID", mock.Anything, userID).Return(nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	resp, err := u.Logout(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Session closed successfully", resp.Message)

	rtRepo.AssertExpectations(t)
}

func TestAuthUsecase_CleanExpiredTokens(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)
	now := time.Now()

	rtRepo.On("DeleteExpired", mock.Anything, now).Return(int64(3), nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: now})

	deleted, err := u.CleanExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	rtRepo.AssertExpectations(t)
}

// 存在しない・停止済みはエラーではなくnil（401にするかはhandler側）
func TestAuthUsecase_ValidateUser(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := new(MockRefreshTokenRepository)
	v := new(MockAuthValidator)

	knownID := uuid.NewString()
	unknownID := uuid.NewString()

	userRepo.On("FindActiveByID", mock.Anything, knownID).Return(&model.User{ID: knownID, IsActive: true}, nil)
	userRepo.On("FindActiveByID", mock.Anything, unknownID).Return(nil, nil)

	u := newAuthUC(userRepo, rtRepo, v, &fixedClock{t: time.Now()})

	user, err := u.ValidateUser(ctx, knownID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, knownID, user.ID)

	user, err = u.ValidateUser(ctx, unknownID)
	require.NoError(t, err)
	assert.Nil(t, user)
}

// =====================
// 使い捨てローテーションのシナリオ（in-memory fakeで一連の流れを通す）
// =====================

// MarkUsedの「未使用・未失効の行だけ更新」契約まで再現したfake
type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.RefreshToken // key: tokenID
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{tokens: map[string]*model.RefreshToken{}}
}

func (f *fakeRefreshTokenRepo) Create(ctx context.Context, rt *model.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rt
	f.tokens[rt.ID] = &cp
	return nil
}

func (f *fakeRefreshTokenRepo) FindByTokenWithUser(ctx context.Context, tokenValue string) (*model.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rt := range f.tokens {
		if rt.Token == tokenValue {
			cp := *rt
			cp.User = activeUserForRefresh(rt.UserID)
			return &cp, nil
		}
	}
	return nil, repository.ErrRefreshTokenNotFound
}

func (f *fakeRefreshTokenRepo) MarkUsed(ctx context.Context, tokenID string, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rt, ok := f.tokens[tokenID]
	if !ok || rt.UsedAt != nil || rt.Revoked {
		//0件更新＝先に誰かが使っている
		return repository.ErrRefreshTokenNotFound
	}
	rt.UsedAt = &usedAt
	return nil
}

func (f *fakeRefreshTokenRepo) Revoke(ctx context.Context, tokenID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rt, ok := f.tokens[tokenID]; ok {
		rt.Revoked = true
	}
	return nil
}

func (f *fakeRefreshTokenRepo) RevokeAllByUserID(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rt := range f.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}

func (f *fakeRefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, rt := range f.tokens {
		if rt.ExpiresAt.Before(now) {
			delete(f.tokens, id)
			n++
		}
	}
	return n, nil
}

// login → refresh → 旧tokenの再提示は拒否、の一連の流れ
func TestAuthUsecase_RefreshRotation_Scenario(t *testing.T) {
	ctx := context.Background()

	userRepo := new(MockUserRepository)
	rtRepo := newFakeRefreshTokenRepo()
	v := new(MockAuthValidator)
	clock := &fixedClock{t: time.Now()}

	userID := uuid.NewString()

	v.On("ValidateLogin", "alice", "CorrectPW1").Return(nil)
	userRepo.On("FindByUsername", mock.Anything, "alice").Return(&model.User{
		ID:           userID,
		Username:     "alice",
		Email:        "alice@test.com",
		PasswordHash: mustHash(t, "CorrectPW1"),
		IsActive:     true,
	}, nil)

	tx := &stubTxManager{repos: stubTxRepos{users: userRepo, rts: rtRepo}}
	u := NewAuthUsecase(userRepo, rtRepo, tx,
		crypto.NewBcryptHasher(crypto.DefaultBcryptCost),
		token.NewIssuer("test-secret"), clock, v)

	//login: R1発行
	loginBundle, err := u.Login(ctx, LoginInput{Username: "alice", Password: "CorrectPW1"})
	require.NoError(t, err)
	r1 := loginBundle.RefreshToken

	// R1でrefresh: R2発行
	refreshBundle, err := u.Refresh(ctx, r1)
	require.NoError(t, err)
	r2 := refreshBundle.RefreshToken
	assert.NotEqual(t, r1, r2)

	// R1の再提示は再利用として拒否
	_, err = u.Refresh(ctx, r1)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)

	// R2はまだ使える
	rotated, err := u.Refresh(ctx, r2)
	require.NoError(t, err)
	r3 := rotated.RefreshToken

	// logout後は最新のtokenも使えない
	_, err = u.Logout(ctx, userID)
	require.NoError(t, err)

	_, err = u.Refresh(ctx, r3)
	assert.ErrorIs(t, err, ErrRefreshTokenRevoked)
}
