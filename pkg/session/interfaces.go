package session

import (
	"context"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

// GenerativeClient は編集セッションが利用する生成モデルの窓口です。
// 入力画像と指示テキストから新しい画像を返します。失敗は
// domain.ErrGenerationFailed（またはそれをラップするエラー）として返されることを想定します。
type GenerativeClient interface {
	Generate(ctx context.Context, img domain.EncodedImage, instruction string, tier domain.ModelTier) (domain.EncodedImage, error)
}

// CredentialGate はアップスケール前に資格情報の有無を確認する協力者です。
// RequestCredential は資格情報の取得を試みますが、失敗してもセッションは
// ベストエフォートで処理を続行します（拒否は致命的ではありません）。
type CredentialGate interface {
	HasCredential(ctx context.Context) bool
	RequestCredential(ctx context.Context) error
}

// SourceFetcher は URI からセッションの入力画像バイト列を取得する協力者です。
// generator.Fetcher が標準実装です。
type SourceFetcher interface {
	FetchBytes(ctx context.Context, uri string) ([]byte, error)
}
