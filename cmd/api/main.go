package main

import (
	"context"
	"time"

	"app/internal/config"
	appcrypto "app/internal/crypto"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/middleware"
	"app/internal/server"
	"app/internal/token"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// 期限切れrefreshtokenの掃除間隔
const tokenCleanupInterval = time.Hour

func main() {
	//.envはあれば読む（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Onboarding{},
		&model.Product{},
		&model.ProductViewCounter{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	onboardingRepo := infraRepo.NewOnboardingGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := &realClock{}
	hasher := appcrypto.NewBcryptHasher(appcrypto.DefaultBcryptCost)
	issuer := token.NewIssuer(cfg.JWTSecret)
	fieldCipher := appcrypto.NewFieldCipher(cfg.EncryptionKey)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(
		userRepo, rtRepo, txManager,
		hasher, issuer, clock,
		validator.NewAuthValidator(),
	)
	onboardingUC := usecase.NewOnboardingUsecase(
		onboardingRepo, fieldCipher, clock,
		validator.NewOnboardingValidator(),
	)
	productUC := usecase.NewProductUsecase(productRepo, clock)

	//Handler生成
	authH := handler.NewAuthHandler(authUC)
	onboardingH := handler.NewOnboardingHandler(onboardingUC)
	productH := handler.NewProductHandler(productUC)

	authMW := middleware.AuthJWT(issuer, authUC)

	//期限切れトークンの定期掃除
	go func() {
		ticker := time.NewTicker(tokenCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			deleted, err := authUC.CleanExpiredTokens(ctx)
			cancel()
			if err != nil {
				log.Errorf("token cleanup failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Infof("token cleanup: deleted %d expired refresh tokens", deleted)
			}
		}
	}()

	//Server起動
	e := server.New(cfg, authH, onboardingH, productH, authMW)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
