package session

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

// 2000x1000 のテスト用JPEGを作るヘルパー。正規化シナリオの入力役。
func largeJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, img, &jpeg.Options{Quality: 50}))
	return buf.Bytes()
}

func newTestManager(t *testing.T, client GenerativeClient, fetcher SourceFetcher) *Manager {
	t.Helper()
	m, err := NewManager(client, nil, fetcher, Config{})
	require.NoError(t, err)
	return m
}

func TestManager_Begin(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: 2000x1000 が 1024x512 に正規化されてセッションが始まること", func(t *testing.T) {
		m := newTestManager(t, &mockClient{}, nil)

		sess, err := m.Begin(ctx, largeJPEG(t))
		require.NoError(t, err)
		require.NotNil(t, sess)

		assert.Same(t, sess, m.Current())
		assert.Equal(t, domain.StatusIdle, m.Status())

		current := sess.CurrentImage()
		assert.Equal(t, domain.MimeJPEG, current.MimeType)

		decoded, _, err := image.Decode(bytes.NewReader(current.Data))
		require.NoError(t, err)
		b := decoded.Bounds()
		assert.Equal(t, 1024, b.Dx())
		assert.Equal(t, 512, b.Dy())
	})

	t.Run("失敗: デコード不能な入力ではセッションが作成されず Error になること", func(t *testing.T) {
		m := newTestManager(t, &mockClient{}, nil)

		_, err := m.Begin(ctx, []byte("not an image"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrDecode)

		assert.Nil(t, m.Current())
		assert.Equal(t, domain.StatusError, m.Status())
		assert.NotEmpty(t, m.LastError())
	})

	t.Run("差し替え: 新しい Begin で古いセッションが破棄されること", func(t *testing.T) {
		m := newTestManager(t, &mockClient{}, nil)

		first, err := m.Begin(ctx, largeJPEG(t))
		require.NoError(t, err)

		second, err := m.Begin(ctx, largeJPEG(t))
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Same(t, second, m.Current())
	})

	t.Run("拒否: 現在のセッションが処理中の間は Begin できないこと", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		client := &mockClient{
			generateFunc: func(ctx context.Context, img domain.EncodedImage, instruction string, tier domain.ModelTier) (domain.EncodedImage, error) {
				close(started)
				<-release
				return whiteBackgroundPNG(t), nil
			},
		}
		m := newTestManager(t, client, nil)

		sess, err := m.Begin(ctx, largeJPEG(t))
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() { done <- sess.TransformStyle(ctx) }()
		<-started

		_, err = m.Begin(ctx, largeJPEG(t))
		assert.ErrorIs(t, err, domain.ErrBusy)
		assert.Same(t, sess, m.Current(), "in-flight session must not be replaced")

		close(release)
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("in-flight operation did not finish")
		}
	})
}

func TestManager_BeginFromURI(t *testing.T) {
	ctx := context.Background()

	t.Run("成功: フェッチした画像でセッションが始まること", func(t *testing.T) {
		fetcher := &mockFetcher{data: largeJPEG(t)}
		m := newTestManager(t, &mockClient{}, fetcher)

		sess, err := m.BeginFromURI(ctx, "https://example.com/source.jpg")
		require.NoError(t, err)
		require.NotNil(t, sess)
		assert.Equal(t, []string{"https://example.com/source.jpg"}, fetcher.uris)
	})

	t.Run("失敗: フェッチエラーではセッションが作成されないこと", func(t *testing.T) {
		fetcher := &mockFetcher{err: assert.AnError}
		m := newTestManager(t, &mockClient{}, fetcher)

		_, err := m.BeginFromURI(ctx, "https://example.com/missing.jpg")
		require.Error(t, err)
		assert.Nil(t, m.Current())
	})

	t.Run("拒否: fetcher 未設定ではエラーになること", func(t *testing.T) {
		m := newTestManager(t, &mockClient{}, nil)

		_, err := m.BeginFromURI(ctx, "https://example.com/source.jpg")
		assert.Error(t, err)
	})
}

func TestNewManager(t *testing.T) {
	t.Run("nilチェック: client がない場合はエラーを返すこと", func(t *testing.T) {
		_, err := NewManager(nil, nil, nil, Config{})
		assert.Error(t, err)
	})
}

// スタイル変換 → 透明化 → undo のシナリオを Manager 起点で通しで確認する
func TestManager_EndToEndScenario(t *testing.T) {
	ctx := context.Background()

	client := &mockClient{
		generateFunc: func(ctx context.Context, img domain.EncodedImage, instruction string, tier domain.ModelTier) (domain.EncodedImage, error) {
			return whiteBackgroundPNG(t), nil
		},
	}
	m := newTestManager(t, client, nil)

	sess, err := m.Begin(ctx, largeJPEG(t))
	require.NoError(t, err)
	normalized := sess.CurrentImage()

	// スタイル変換: 白背景の生成結果が透明化されて履歴が2件になる
	require.NoError(t, sess.TransformStyle(ctx))
	require.Equal(t, 2, sess.HistoryLen())
	assert.Equal(t, domain.MimePNG, sess.CurrentImage().MimeType)

	decoded, _, err := image.Decode(bytes.NewReader(sess.CurrentImage().Data))
	require.NoError(t, err)
	nrgba, ok := decoded.(*image.NRGBA)
	require.True(t, ok)
	assert.Equal(t, uint8(0), nrgba.NRGBAAt(0, 0).A)
	assert.Equal(t, color.NRGBA{200, 0, 0, 255}, nrgba.NRGBAAt(4, 4))

	// undo で正規化直後の原本に戻る
	require.NoError(t, sess.Undo())
	assert.Equal(t, 1, sess.HistoryLen())
	assert.Equal(t, normalized.Data, sess.CurrentImage().Data)
}
