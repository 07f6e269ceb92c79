package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/google/uuid"
)

var (
	//409 登録競合（usernameを先に判定する）
	ErrDuplicateUsername = errors.New("username already in use")
	ErrDuplicateEmail    = errors.New("email already in use")
	//401 存在しないユーザーもパスワード違いも同じエラー（列挙対策）
	ErrInvalidCredentials = errors.New("invalid credentials")
	//401 停止ユーザー。こちらはアカウントの存在がわかるエラーになる
	ErrInactiveAccount = errors.New("account is inactive")
	//401 refresh系。外向きにはどれも同じunauthorizedに潰す
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	//500 下層の詳細は外に出さない
	ErrInternal = errors.New("internal error")
)

// refreshtokenの有効期限
const refreshTokenTTL = 10 * time.Minute

// refreshtokenの乱数長（hexにして128文字）
const refreshTokenBytes = 64

const tokenTypeBearer = "Bearer"

// usecaseがValidatorに依存する約束
type AuthValidator interface {
	ValidateRegister(username string, email string, password string) error
	ValidateLogin(username string, password string) error
}

// 平文パスワードとハッシュの変換・照合の約束
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain string, hashed string) bool
}

// accesstokenを発行する約束
type AccessTokenIssuer interface {
	Issue(userID string, username string, email string, now time.Time) (string, error)
	ExpiresInSeconds() int
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

type UserDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type RegisterResponse struct {
	Message string  `json:"message"`
	User    UserDTO `json:"user"`
}

// login/refreshの返却形。
// refreshではuserを返さない。
type TokenBundle struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	TokenType    string   `json:"token_type"`
	User         *UserDTO `json:"user,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

type AuthUsecase struct {
	users     repository.UserRepository
	rtRepo    repository.RefreshTokenRepository
	txManager repository.TransactionManager
	hasher    PasswordHasher
	issuer    AccessTokenIssuer
	clock     Clock
	validator AuthValidator
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	rtRepo repository.RefreshTokenRepository,
	txManager repository.TransactionManager,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	clock Clock,
	validator AuthValidator,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		rtRepo:    rtRepo,
		txManager: txManager,
		hasher:    hasher,
		issuer:    issuer,
		clock:     clock,
		validator: validator,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Registerは会員登録。
// username/emailの重複は1クエリの事前チェック＋DBのunique制約の二段構え。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*RegisterResponse, error) {
	if err := u.validator.ValidateRegister(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}

	existing, err := u.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, ErrInternal
	}
	if existing != nil {
		//username優先で判定する
		if existing.Username == in.Username {
			return nil, ErrDuplicateUsername
		}
		return nil, ErrDuplicateEmail
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	pwHash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, ErrInternal
	}

	now := u.clock.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: pwHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		//事前チェックの隙間で同時登録されたらDB制約側で拾う
		switch {
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, ErrDuplicateUsername
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		}
		//ハッシュや下層の詳細は呼び出し側に返さない
		return nil, ErrInternal
	}

	return &RegisterResponse{
		Message: "User registered successfully",
		User:    toUserDTO(user),
	}, nil
}

type LoginInput struct {
	Username string
	Password string
}

// Loginはusernameのみで検索する（emailではログインできない）。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*TokenBundle, error) {
	if err := u.validator.ValidateLogin(in.Username, in.Password); err != nil {
		return nil, err
	}

	user, err := u.users.FindByUsername(ctx, in.Username)
	if err != nil {
		return nil, ErrInternal
	}
	//存在しないユーザーとパスワード違いは同じエラーにする
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return nil, ErrInactiveAccount
	}

	//パスワード照合（bcrypt）
	if !u.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := u.clock.Now()

	accessToken, err := u.issuer.Issue(user.ID, user.Username, user.Email, now)
	if err != nil {
		return nil, ErrInternal
	}

	refreshToken, err := generateOpaqueToken()
	if err != nil {
		return nil, ErrInternal
	}

	rt := &model.RefreshToken{
		ID:        uuid.NewString(),
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now,
	}

	if err := u.rtRepo.Create(ctx, rt); err != nil {
		return nil, ErrInternal
	}

	dto := toUserDTO(user)
	return &TokenBundle{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    u.issuer.ExpiresInSeconds(),
		TokenType:    tokenTypeBearer,
		User:         &dto,
	}, nil
}

// Refreshは使い捨てローテーション。
// 使用済みにする→accesstoken発行→新refreshtoken作成→旧をrevoke、を1Txで行う。
// 同じトークンが同時に2回来ても、条件付きUPDATEで勝者は1回だけ。
func (u *AuthUsecase) Refresh(ctx context.Context, presentedToken string) (*TokenBundle, error) {
	if presentedToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := u.rtRepo.FindByTokenWithUser(ctx, presentedToken)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, ErrInternal
	}

	if stored.Revoked {
		return nil, ErrRefreshTokenRevoked
	}
	//used_atだけ付いてrevoke前に落ちた行も再利用とみなす
	if stored.UsedAt != nil {
		return nil, ErrRefreshTokenRevoked
	}

	now := u.clock.Now()
	if now.After(stored.ExpiresAt) {
		return nil, ErrRefreshTokenExpired
	}

	if !stored.User.IsActive {
		return nil, ErrInactiveAccount
	}

	var bundle *TokenBundle

	txErr := u.txManager.WithinTx(ctx, func(r repository.TxRepos) error {
		//ここが再利用検知の本体。0件更新なら先に誰かが使っている
		if err := r.RefreshTokens().MarkUsed(ctx, stored.ID, now); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return ErrRefreshTokenRevoked
			}
			return err
		}

		accessToken, err := u.issuer.Issue(stored.User.ID, stored.User.Username, stored.User.Email, now)
		if err != nil {
			return err
		}

		newToken, err := generateOpaqueToken()
		if err != nil {
			return err
		}

		newRT := &model.RefreshToken{
			ID:        uuid.NewString(),
			Token:     newToken,
			UserID:    stored.UserID,
			ExpiresAt: now.Add(refreshTokenTTL),
			CreatedAt: now,
		}
		if err := r.RefreshTokens().Create(ctx, newRT); err != nil {
			return err
		}

		if err := r.RefreshTokens().Revoke(ctx, stored.ID); err != nil {
			return err
		}

		//refreshではuserを返さない
		bundle = &TokenBundle{
			AccessToken:  accessToken,
			RefreshToken: newToken,
			ExpiresIn:    u.issuer.ExpiresInSeconds(),
			TokenType:    tokenTypeBearer,
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, ErrRefreshTokenRevoked) {
			return nil, ErrRefreshTokenRevoked
		}
		return nil, ErrInternal
	}

	return bundle, nil
}

// Logoutは該当ユーザーの未失効refreshtokenを一括revoke。
// 2回呼んでも結果は同じ（冪等）。
func (u *AuthUsecase) Logout(ctx context.Context, userID string) (*SuccessResponse, error) {
	if err := u.rtRepo.RevokeAllByUserID(ctx, userID); err != nil {
		return nil, ErrInternal
	}

	return &SuccessResponse{Message: "Session closed successfully"}, nil
}

// CleanExpiredTokensは期限切れトークンの定期削除。
// revoked/usedかどうかは問わず、期限が過ぎた行は全部消す。
func (u *AuthUsecase) CleanExpiredTokens(ctx context.Context) (int64, error) {
	deleted, err := u.rtRepo.DeleteExpired(ctx, u.clock.Now())
	if err != nil {
		return 0, ErrInternal
	}
	return deleted, nil
}

// ValidateUserは認証済みリクエストごとの再確認。
// 存在しない・停止済みはエラーではなくnilで返し、401にするかはhandlerが決める。
func (u *AuthUsecase) ValidateUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.users.FindActiveByID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}
	return user, nil
}

// model.UserをAPI返却用DTOに変換。password hashは含めない。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// refreshtoken生成（64byte乱数のhex表現）
func generateOpaqueToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
