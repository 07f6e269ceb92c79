package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/google/uuid"
)

// 書類フィールドの暗号化・復号の約束
type DocumentCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(encrypted string) (string, error)
}

// 申込入力のチェックの約束
type OnboardingValidator interface {
	ValidateCreate(name string, document string, email string, initialAmount float64) error
}

type OnboardingDTO struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Document      string                 `json:"document"`
	Email         string                 `json:"email"`
	InitialAmount float64                `json:"initial_amount"`
	Status        model.OnboardingStatus `json:"status"`
	UserID        string                 `json:"user_id"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type OnboardingUsecase struct {
	onboardings repository.OnboardingRepository
	cipher      DocumentCipher
	clock       Clock
	validator   OnboardingValidator
}

// DI
func NewOnboardingUsecase(
	onboardings repository.OnboardingRepository,
	cipher DocumentCipher,
	clock Clock,
	validator OnboardingValidator,
) *OnboardingUsecase {
	return &OnboardingUsecase{
		onboardings: onboardings,
		cipher:      cipher,
		clock:       clock,
		validator:   validator,
	}
}

type CreateOnboardingInput struct {
	Name          string
	Document      string
	Email         string
	InitialAmount float64
}

// Createは申込を作成する。
// 書類の重複チェックは暗号文ではできないので、平文のfingerprint（決定的ハッシュ）で行う。
// 暗号文は毎回変わるがfingerprintは同じ平文なら常に同じ。
func (u *OnboardingUsecase) Create(ctx context.Context, userID string, in CreateOnboardingInput) (*OnboardingDTO, error) {
	if err := u.validator.ValidateCreate(in.Name, in.Document, in.Email, in.InitialAmount); err != nil {
		return nil, err
	}

	existingByEmail, err := u.onboardings.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error creating onboarding")
	}
	if existingByEmail != nil {
		return nil, NewHTTPError(http.StatusConflict, "a registration with this email already exists")
	}

	documentHash := crypto.Fingerprint(in.Document)

	existingByDocument, err := u.onboardings.FindByDocumentHash(ctx, documentHash)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error creating onboarding")
	}
	if existingByDocument != nil {
		return nil, NewHTTPError(http.StatusConflict, "a registration with this document already exists")
	}

	encryptedDocument, err := u.cipher.Encrypt(in.Document)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error creating onboarding")
	}

	now := u.clock.Now()
	onboarding := &model.Onboarding{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Document:      encryptedDocument,
		DocumentHash:  documentHash,
		Email:         in.Email,
		InitialAmount: in.InitialAmount,
		Status:        model.OnboardingStatusRequested,
		UserID:        userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := u.onboardings.Create(ctx, onboarding); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error creating onboarding")
	}

	//createは保存した形（暗号化済みdocument）をそのまま返す
	return toOnboardingDTO(onboarding, onboarding.Document), nil
}

// FindAllByUserは自分の申込一覧。documentは復号して返す。
func (u *OnboardingUsecase) FindAllByUser(ctx context.Context, userID string) ([]OnboardingDTO, error) {
	list, err := u.onboardings.FindAllByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error fetching onboardings")
	}

	result := make([]OnboardingDTO, 0, len(list))
	for i := range list {
		plain, err := u.cipher.Decrypt(list[i].Document)
		if err != nil {
			//復号失敗の詳細は外に出さない
			return nil, NewHTTPError(http.StatusInternalServerError, "error fetching onboardings")
		}
		result = append(result, *toOnboardingDTO(&list[i], plain))
	}

	return result, nil
}

// FindOneは1件取得。所有者以外は403。
func (u *OnboardingUsecase) FindOne(ctx context.Context, id string, userID string) (*OnboardingDTO, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "the provided ID is not a valid UUID")
	}

	onboarding, err := u.onboardings.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrOnboardingNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "onboarding not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "error fetching onboarding")
	}

	if onboarding.UserID != userID {
		return nil, NewHTTPError(http.StatusForbidden, "you do not have permission to access this onboarding")
	}

	plain, err := u.cipher.Decrypt(onboarding.Document)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error fetching onboarding")
	}

	return toOnboardingDTO(onboarding, plain), nil
}

// UpdateStatusはステータスのみ更新する
func (u *OnboardingUsecase) UpdateStatus(ctx context.Context, id string, userID string, status model.OnboardingStatus) (*OnboardingDTO, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NewHTTPError(http.StatusBadRequest, "the provided ID is not a valid UUID")
	}
	if !model.ValidOnboardingStatus(status) {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	onboarding, err := u.onboardings.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrOnboardingNotFound {
			return nil, NewHTTPError(http.StatusNotFound, "onboarding not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "error updating onboarding status")
	}

	if onboarding.UserID != userID {
		return nil, NewHTTPError(http.StatusForbidden, "you do not have permission to update this onboarding")
	}

	onboarding.Status = status
	onboarding.UpdatedAt = u.clock.Now()

	if err := u.onboardings.Update(ctx, onboarding); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error updating onboarding status")
	}

	plain, err := u.cipher.Decrypt(onboarding.Document)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "error updating onboarding status")
	}

	return toOnboardingDTO(onboarding, plain), nil
}

// Removeはソフトデリート
func (u *OnboardingUsecase) Remove(ctx context.Context, id string, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NewHTTPError(http.StatusBadRequest, "the provided ID is not a valid UUID")
	}

	onboarding, err := u.onboardings.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrOnboardingNotFound {
			return NewHTTPError(http.StatusNotFound, "onboarding not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "error deleting onboarding")
	}

	if onboarding.UserID != userID {
		return NewHTTPError(http.StatusForbidden, "you do not have permission to delete this onboarding")
	}

	if err := u.onboardings.Delete(ctx, id); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "error deleting onboarding")
	}

	return nil
}

func toOnboardingDTO(o *model.Onboarding, document string) *OnboardingDTO {
	return &OnboardingDTO{
		ID:            o.ID,
		Name:          o.Name,
		Document:      document,
		Email:         o.Email,
		InitialAmount: o.InitialAmount,
		Status:        o.Status,
		UserID:        o.UserID,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
