package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/patch-image-kit/pkg/imgutil"
)

const (
	// UseImageCompression が真の場合、取得した参照画像をJPEGに圧縮してから返します。
	UseImageCompression     = true
	ImageCompressionQuality = 75

	cacheKeySource = "source_bytes:"
)

// Fetcher はセッションの入力画像を URI から取得するコンポーネントです。
// http / https は SSRF 検証付きで httpkit 経由、gs:// は remoteio 経由で読み込みます。
// session.SourceFetcher を実装します。
type Fetcher struct {
	httpClient httpkit.ClientInterface
	reader     remoteio.InputReader
	cache      ImageCacher
	expiration time.Duration
}

// NewFetcher は依存関係を注入して Fetcher を初期化します。
// reader は nil を許容します（gs:// 非対応として動作）。cache も nil を許容します。
func NewFetcher(httpClient httpkit.ClientInterface, reader remoteio.InputReader, cache ImageCacher, cacheTTL time.Duration) (*Fetcher, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}

	return &Fetcher{
		httpClient: httpClient,
		reader:     reader,
		cache:      cache,
		expiration: cacheTTL,
	}, nil
}

// FetchBytes は URI から画像バイト列を取得します。
func (f *Fetcher) FetchBytes(ctx context.Context, uri string) ([]byte, error) {
	cacheKey := cacheKeySource + uri
	if f.cache != nil {
		if val, ok := f.cache.Get(cacheKey); ok {
			if data, ok := val.([]byte); ok {
				return data, nil
			}
			slog.WarnContext(ctx, "キャッシュデータが不正な型です", "uri", uri, "type", fmt.Sprintf("%T", val))
		}
	}

	data, err := f.fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	if UseImageCompression {
		if compressed, err := imgutil.CompressToJPEG(data, ImageCompressionQuality); err == nil {
			data = compressed
		}
	}

	if f.cache != nil {
		f.cache.Set(cacheKey, data, f.expiration)
	}
	return data, nil
}

func (f *Fetcher) fetch(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "gs://") {
		if f.reader == nil {
			return nil, fmt.Errorf("gs:// は未対応です (reader が未設定): %s", uri)
		}
		rc, err := f.reader.Open(ctx, uri)
		if err != nil {
			return nil, fmt.Errorf("GCSからの読み込みに失敗しました: %w", err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}

	if safe, err := IsSafeURL(uri); err != nil || !safe {
		return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
	}
	return f.httpClient.FetchBytes(ctx, uri)
}
