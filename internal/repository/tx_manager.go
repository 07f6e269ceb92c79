package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Users() UserRepository
	RefreshTokens() RefreshTokenRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// refreshの「使用済みにする→新トークン発行→旧トークンrevoke」を1Txで行うために使う。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
