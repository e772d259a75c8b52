package imgutil

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

const (
	// DefaultMaxDimension は正規化後の長辺の上限（デフォルト）です。
	DefaultMaxDimension = 1024
	// normalizeJPEGQuality は正規化時の再エンコード品質です。
	normalizeJPEGQuality = 90
)

// Normalize は生の画像バイト列をデコードし、長辺が maxDimension 以下になるよう
// アスペクト比を厳密に維持して縮小し、JPEG (quality 90) で再エンコードします。
// 既に上限内の場合は縮小せず（scale = 1）、再エンコードのみ行います。
// maxDimension が 0 以下の場合は DefaultMaxDimension を使います。
//
// 拡大は行いません。出力は必ず max(outW, outH) <= maxDimension を満たします。
func Normalize(data []byte, maxDimension int) (domain.EncodedImage, error) {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return domain.EncodedImage{}, fmt.Errorf("%w: 画像サイズが不正です (%dx%d)", domain.ErrDecode, w, h)
	}

	outW, outH := fitWithin(w, h, maxDimension)

	var final image.Image = src
	if outW != w || outH != h {
		dst := image.NewRGBA(image.Rect(0, 0, outW, outH))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Src, nil)
		final = dst
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, final, &jpeg.Options{Quality: normalizeJPEGQuality}); err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	return domain.EncodedImage{Data: buf.Bytes(), MimeType: domain.MimeJPEG}, nil
}

// fitWithin は長辺を maxDimension 以下に収めるスケール済み寸法を返します。
// 縮小のみ（scale <= 1）で、丸め後も最低 1px を保証します。
func fitWithin(w, h, maxDimension int) (int, int) {
	longer := w
	if h > longer {
		longer = h
	}
	if longer <= maxDimension {
		return w, h
	}

	scale := float64(maxDimension) / float64(longer)
	outW := int(math.Round(float64(w) * scale))
	outH := int(math.Round(float64(h) * scale))
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}
