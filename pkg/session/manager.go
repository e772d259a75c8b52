package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shouni/patch-image-kit/pkg/domain"
	"github.com/shouni/patch-image-kit/pkg/imgutil"
)

// Manager は現在の編集セッションを所有し、アップロードによる差し替えを行います。
// 新しい入力画像で Begin すると古いセッションは破棄されます（セッションを跨ぐ
// 永続化は行いません）。
type Manager struct {
	client  GenerativeClient
	gate    CredentialGate
	fetcher SourceFetcher
	cfg     Config

	mu        sync.Mutex
	current   *Session
	uploading bool
	lastErr   string
}

// NewManager は依存関係を注入して Manager を初期化します。
// fetcher は nil を許容します（BeginFromURI 非対応として動作）。
func NewManager(client GenerativeClient, gate CredentialGate, fetcher SourceFetcher, cfg Config) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("client (GenerativeClient) is required")
	}

	return &Manager{
		client:  client,
		gate:    gate,
		fetcher: fetcher,
		cfg:     cfg.withDefaults(),
	}, nil
}

// Begin は生の画像バイト列を正規化して新しいセッションを開始します。
// 成功すると現在のセッションを置き換え、失敗するとセッションは作成されず
// Manager の状態が Error になります。現在のセッションが処理中の間は拒否されます。
func (m *Manager) Begin(ctx context.Context, data []byte) (*Session, error) {
	if err := m.startUpload(); err != nil {
		return nil, err
	}

	normalized, err := imgutil.Normalize(data, m.cfg.MaxDimension)
	if err != nil {
		wrapped := fmt.Errorf("画像の取り込みに失敗しました: %w", err)
		m.finishUpload(nil, wrapped)
		return nil, wrapped
	}

	sess, err := New(m.client, m.gate, m.cfg, normalized)
	if err != nil {
		m.finishUpload(nil, err)
		return nil, err
	}

	slog.InfoContext(ctx, "新しい編集セッションを開始しました", "mime_type", normalized.MimeType, "bytes", len(normalized.Data))

	m.finishUpload(sess, nil)
	return sess, nil
}

// BeginFromURI は http / https / gs:// の URI から入力画像を取得して Begin します。
func (m *Manager) BeginFromURI(ctx context.Context, uri string) (*Session, error) {
	if m.fetcher == nil {
		return nil, fmt.Errorf("fetcher が未設定のため URI からの取り込みはできません")
	}

	data, err := m.fetcher.FetchBytes(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("入力画像の取得に失敗しました: %w", err)
	}

	return m.Begin(ctx, data)
}

// Current は現在のセッションを返します。未開始なら nil です。
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Status は表示層が観測する状態を返します。取り込み中は Uploading、
// セッション未作成なら Idle（直前の取り込みが失敗していれば Error）、
// それ以外は現在のセッションの状態です。
func (m *Manager) Status() domain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.uploading {
		return domain.StatusUploading
	}
	if m.lastErr != "" {
		// 直近の取り込み失敗は次の Begin まで Error として観測される
		return domain.StatusError
	}
	if m.current != nil {
		return m.current.Status()
	}
	return domain.StatusIdle
}

// LastError は直近の失敗した取り込みのメッセージを返します。
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) startUpload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.uploading {
		return domain.ErrBusy
	}
	if m.current != nil && m.current.Status().InFlight() {
		return domain.ErrBusy
	}

	m.uploading = true
	m.lastErr = ""
	return nil
}

func (m *Manager) finishUpload(sess *Session, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploading = false
	if err != nil {
		m.lastErr = err.Error()
		return
	}
	m.current = sess
}
