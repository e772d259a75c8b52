package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

// ExtractTransparency は対象色に近い画素を透明化します。
// 各画素の (R,G,B) と target のユークリッド距離 d を生の8bit RGB空間で計算し、
// d < tolerance の画素だけアルファを 0 にします。RGB値そのものは一切変更しません。
// 距離は RGB のみから計算するため、既に透明な画素への再適用は no-op であり、
// 同じ引数での再適用は冪等です。
//
// アルファチャンネルを保持するため、出力は必ず PNG で再エンコードします。
// 出力の寸法は入力と同一です。
func ExtractTransparency(img domain.EncodedImage, target domain.RGB, tolerance float64) (domain.EncodedImage, error) {
	if tolerance < 0 {
		return domain.EncodedImage{}, fmt.Errorf("許容値は0以上を指定してください: %g", tolerance)
	}

	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}

	bounds := src.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)

	tr, tg, tb := float64(target.R), float64(target.G), float64(target.B)
	for i := 0; i < len(nrgba.Pix); i += 4 {
		dr := float64(nrgba.Pix[i]) - tr
		dg := float64(nrgba.Pix[i+1]) - tg
		db := float64(nrgba.Pix[i+2]) - tb
		if math.Sqrt(dr*dr+dg*dg+db*db) < tolerance {
			nrgba.Pix[i+3] = 0
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, nrgba); err != nil {
		return domain.EncodedImage{}, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	return domain.EncodedImage{Data: buf.Bytes(), MimeType: domain.MimePNG}, nil
}
