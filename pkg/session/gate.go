package session

import (
	"context"
	"fmt"
	"os"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

// DefaultCredentialEnv は EnvCredentialGate が参照するデフォルトの環境変数名です。
// go-gemini-client が参照する変数と同じ契約です。
const DefaultCredentialEnv = "GEMINI_API_KEY"

// EnvCredentialGate は環境変数の有無で資格情報を判定する CredentialGate 実装です。
// 対話的な取得手段を持たないため、RequestCredential は変数が未設定なら
// domain.ErrCredentialUnavailable を返すだけです（セッションはそのまま続行します）。
type EnvCredentialGate struct {
	// Var は参照する環境変数名です。空なら DefaultCredentialEnv。
	Var string
}

func (g *EnvCredentialGate) envVar() string {
	if g.Var == "" {
		return DefaultCredentialEnv
	}
	return g.Var
}

// HasCredential は環境変数が設定されているかを返します。
func (g *EnvCredentialGate) HasCredential(ctx context.Context) bool {
	return os.Getenv(g.envVar()) != ""
}

// RequestCredential は資格情報の取得を試みます。
func (g *EnvCredentialGate) RequestCredential(ctx context.Context) error {
	if os.Getenv(g.envVar()) == "" {
		return fmt.Errorf("%w: 環境変数 %s が未設定です", domain.ErrCredentialUnavailable, g.envVar())
	}
	return nil
}
