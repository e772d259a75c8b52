package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

// CompressToJPEG は画像データ（PNG, GIF, JPEG等）を指定品質のJPEGに圧縮します。
// 生成モデルへ送る参照画像の転送量を抑える用途で使います。
// アルファチャンネルは失われるため、透過を保持したい画像には使わないでください。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}
	return buf.Bytes(), nil
}
