package domain

// サポートするMIMEタイプ。履歴に保存されるのはこの2種類のみです。
const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
)

// EncodedImage はエンコード済み画像の不変値です。
// 生成モデルとの交換、および編集履歴への保存の単位になります。
// Data は必ず MimeType でデコード可能なバイト列でなければなりません。
type EncodedImage struct {
	Data     []byte
	MimeType string
}

// IsZero は画像データを持たない空値かどうかを返します。
func (e EncodedImage) IsZero() bool {
	return len(e.Data) == 0
}

// Clone は Data を複製した独立コピーを返します。
// 履歴に保存した画像を呼び出し元のバッファ書き換えから守るために使います。
func (e EncodedImage) Clone() EncodedImage {
	if len(e.Data) == 0 {
		return EncodedImage{MimeType: e.MimeType}
	}
	data := make([]byte, len(e.Data))
	copy(data, e.Data)
	return EncodedImage{Data: data, MimeType: e.MimeType}
}

// RGB はクロマキー判定の対象色です。8bit各チャンネル、ガンマ補正なしの生RGB空間で扱います。
type RGB struct {
	R, G, B uint8
}

// DefaultChromaTarget は背景として扱うデフォルトの対象色（純白）です。
var DefaultChromaTarget = RGB{R: 255, G: 255, B: 255}

// DefaultChromaTolerance はクロマキー抽出のデフォルト許容値です。
// 許容値はユークリッド距離の絶対値で、取りうる範囲は 0〜441.7（黒と白の距離）です。
const DefaultChromaTolerance = 30.0

// ModelTier は生成モデルに要求する品質階層です。
type ModelTier string

const (
	// ModelTierStandard は通常の変換（スタイル転写・テキスト編集）に使います。
	ModelTierStandard ModelTier = "standard"
	// ModelTierHighResolution はアップスケール時に最高解像度の出力を要求します。
	ModelTierHighResolution ModelTier = "high_resolution"
)
