// Package session は、1枚の作業画像に対する編集セッションの状態機械を提供します。
//
// セッションは線形の編集履歴（追記のみ、現在画像 = 末尾）と処理状態を所有し、
// 外部の生成モデルへの呼び出しを逐次化します。トップレベル操作
// (TransformStyle / TransformWithPrompt / Upscale) は同時に1つだけ実行でき、
// 状態ゲートがそれを強制します。ゲート外の呼び出しは副作用なしで拒否されます。
//
// 履歴と状態の読み取りは、生成モデルの往復中でもブロックされません。
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shouni/patch-image-kit/pkg/domain"
	"github.com/shouni/patch-image-kit/pkg/imgutil"
)

// Session は1枚の作業画像に対する編集セッションです。
// 生成には時間がかかるため、往復中はロックを手放し、結果の反映だけを
// ロック下で行います。履歴と状態を書き換えるのはセッション自身だけです。
type Session struct {
	client GenerativeClient
	gate   CredentialGate
	cfg    Config

	mu            sync.Mutex
	original      domain.EncodedImage
	history       []domain.EncodedImage
	status        domain.Status
	lastErr       string
	pendingPrompt string
}

// New は正規化済みのシード画像から編集セッションを作成します。
// normalized はアップロード時の不変スナップショットとして保持され、
// 履歴の先頭 (index 0) に複製が積まれます。gate は nil を許容します
// （資格情報の確認なしで動作）。
func New(client GenerativeClient, gate CredentialGate, cfg Config, normalized domain.EncodedImage) (*Session, error) {
	if client == nil {
		return nil, fmt.Errorf("client (GenerativeClient) is required")
	}
	if normalized.IsZero() {
		return nil, fmt.Errorf("正規化済みのシード画像が必要です")
	}

	original := normalized.Clone()
	return &Session{
		client:   client,
		gate:     gate,
		cfg:      cfg.withDefaults(),
		original: original,
		history:  []domain.EncodedImage{original.Clone()},
		status:   domain.StatusIdle,
	}, nil
}

// TransformStyle は現在画像をワッペン風スタイルに変換し、続けて背景を透明化します。
// 生成と透明化のどちらが失敗しても履歴は変化しません（all-or-nothing）。
func (s *Session) TransformStyle(ctx context.Context) error {
	base, err := s.enter(domain.StatusProcessing)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "スタイル変換を開始します", "history_len", s.HistoryLen())

	generated, err := s.client.Generate(ctx, base, s.cfg.StylePrompt, domain.ModelTierStandard)
	if err != nil {
		return s.fail("スタイル変換に失敗しました", err)
	}

	s.advance(domain.StatusRemovingBackground)

	out, err := imgutil.ExtractTransparency(generated, *s.cfg.ChromaTarget, s.cfg.ChromaTolerance)
	if err != nil {
		return s.fail("背景の透明化に失敗しました", err)
	}

	s.commit(out)
	return nil
}

// TransformWithPrompt は指示テキストに従って現在画像を編集します。
// 透明化は行いません。テキストがトリム後に空の場合は状態を変えずに拒否します。
func (s *Session) TransformWithPrompt(ctx context.Context, text string) error {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return domain.ErrEmptyPrompt
	}

	base, err := s.enter(domain.StatusProcessing)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "テキスト指示による編集を開始します")

	generated, err := s.client.Generate(ctx, base, prompt, domain.ModelTierStandard)
	if err != nil {
		return s.fail("テキスト指示による編集に失敗しました", err)
	}

	s.mu.Lock()
	s.pendingPrompt = ""
	s.mu.Unlock()

	s.commit(generated)
	return nil
}

// Upscale は現在画像の最高解像度版を生成します。
// 実行前に資格情報ゲートへ問い合わせますが、拒否されてもベストエフォートで
// 続行します（権限がなければ生成呼び出し自体が失敗します）。
// アップスケール後に背景の透明化を再実行することはありません。
func (s *Session) Upscale(ctx context.Context) error {
	base, err := s.enter(domain.StatusUpscaling)
	if err != nil {
		return err
	}

	if s.gate != nil && !s.gate.HasCredential(ctx) {
		if err := s.gate.RequestCredential(ctx); err != nil {
			slog.WarnContext(ctx, "資格情報を取得できませんでした。ベストエフォートで続行します", "error", err)
		}
	}

	slog.InfoContext(ctx, "アップスケールを開始します")

	generated, err := s.client.Generate(ctx, base, s.cfg.UpscalePrompt, domain.ModelTierHighResolution)
	if err != nil {
		return s.fail("アップスケールに失敗しました", err)
	}

	s.commit(generated)
	return nil
}

// Undo は最後の変換を取り消します。履歴が1件のときは拒否され、
// 履歴は必ず1件以上を保ちます。純粋なローカル操作のため状態は変化しません。
func (s *Session) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.InFlight() {
		return domain.ErrBusy
	}
	if len(s.history) <= 1 {
		return domain.ErrNothingToUndo
	}

	s.history = s.history[:len(s.history)-1]
	return nil
}

// Reset はすべての変換を破棄し、履歴をアップロード時の不変スナップショット
// 1件だけに置き換えます。履歴の先頭ではなく、保存された原本から再構築します。
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.InFlight() {
		return domain.ErrBusy
	}
	if len(s.history) <= 1 {
		return domain.ErrNothingToReset
	}

	s.history = []domain.EncodedImage{s.original.Clone()}
	return nil
}

// --- 読み取り系（往復中でもブロックされません） ---

// Status は現在の処理状態を返します。
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentImage は履歴の末尾（現在画像）を返します。
func (s *Session) CurrentImage() domain.EncodedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history[len(s.history)-1]
}

// OriginalImage はアップロード時の不変スナップショットを返します。
func (s *Session) OriginalImage() domain.EncodedImage {
	return s.original
}

// History は履歴のコピーを返します。
func (s *Session) History() []domain.EncodedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EncodedImage, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryLen は履歴の長さを返します。アクティブなセッションでは常に1以上です。
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// LastError は直近の失敗した操作が表示層へ向けて残したメッセージを返します。
// 新しいトップレベル操作が始まるとクリアされます。
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// SetPendingPrompt はテキスト編集用の一時的な入力テキストを保持します。
// 履歴には保存されず、編集の成功時にクリアされます。
func (s *Session) SetPendingPrompt(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingPrompt = text
}

// PendingPrompt は保持中の入力テキストを返します。
func (s *Session) PendingPrompt() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingPrompt
}

// --- 状態遷移ヘルパー ---

// enter は状態ゲートを検査し、通過できれば過渡状態へ遷移して
// 変換の基点となる現在画像を返します。ゲート外なら domain.ErrBusy を返し、
// 状態も履歴も変化しません。
func (s *Session) enter(next domain.Status) (domain.EncodedImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.status.Ready() {
		return domain.EncodedImage{}, domain.ErrBusy
	}

	s.status = next
	s.lastErr = ""
	return s.history[len(s.history)-1], nil
}

// advance は実行中の操作の内部フェーズを進めます。
func (s *Session) advance(next domain.Status) {
	s.mu.Lock()
	s.status = next
	s.mu.Unlock()
}

// commit は変換結果を履歴に追記して Complete に遷移します。
func (s *Session) commit(img domain.EncodedImage) {
	s.mu.Lock()
	s.history = append(s.history, img)
	s.status = domain.StatusComplete
	s.mu.Unlock()
}

// fail は操作の失敗を Error 状態とメッセージに変換します。履歴は変更しません。
func (s *Session) fail(msg string, err error) error {
	wrapped := fmt.Errorf("%s: %w", msg, err)
	s.mu.Lock()
	s.status = domain.StatusError
	s.lastErr = wrapped.Error()
	s.mu.Unlock()
	return wrapped
}
