package session

import (
	"github.com/shouni/patch-image-kit/pkg/domain"
	"github.com/shouni/patch-image-kit/pkg/imgutil"
)

// DefaultStylePrompt はスタイル変換（ワッペン化）のデフォルト指示です。
// 後段のクロマキー抽出が純白背景を前提とするため、背景色の指定を含みます。
const DefaultStylePrompt = "この画像を刺繍ワッペン風のイラストに変換してください。" +
	"縁取りのあるステッチ調で、背景は必ず純白 (#FFFFFF) の単色にしてください。"

// DefaultUpscalePrompt はアップスケール時のデフォルト指示です。
const DefaultUpscalePrompt = "この画像を、内容を一切変えずに可能な限り高い解像度で出力してください。"

// Config は編集セッションの調整項目です。ゼロ値のフィールドにはデフォルトが適用されます。
type Config struct {
	// MaxDimension は正規化後の長辺の上限です。0 以下で imgutil.DefaultMaxDimension。
	MaxDimension int
	// StylePrompt はスタイル変換に渡す指示テキストです。
	StylePrompt string
	// UpscalePrompt はアップスケールに渡す指示テキストです。
	UpscalePrompt string
	// ChromaTarget は背景として透明化する対象色です。nil で純白。
	ChromaTarget *domain.RGB
	// ChromaTolerance は透明化のユークリッド距離許容値です。0 以下でデフォルト (30)。
	ChromaTolerance float64
}

func (c Config) withDefaults() Config {
	if c.MaxDimension <= 0 {
		c.MaxDimension = imgutil.DefaultMaxDimension
	}
	if c.StylePrompt == "" {
		c.StylePrompt = DefaultStylePrompt
	}
	if c.UpscalePrompt == "" {
		c.UpscalePrompt = DefaultUpscalePrompt
	}
	if c.ChromaTarget == nil {
		target := domain.DefaultChromaTarget
		c.ChromaTarget = &target
	}
	if c.ChromaTolerance <= 0 {
		c.ChromaTolerance = domain.DefaultChromaTolerance
	}
	return c
}
