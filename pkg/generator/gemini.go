package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/patch-image-kit/pkg/domain"
)

const (
	// DefaultModel は通常階層（スタイル転写・テキスト編集）で使うモデルです。
	DefaultModel = "gemini-2.5-flash-image"
	// DefaultUpscaleModel は最高解像度出力を要求するアップスケール用モデルです。
	DefaultUpscaleModel = "gemini-2.5-pro-image"
)

// GeminiGenerator は Gemini を使って画像変換を実行する生成クライアントです。
// 入力画像と指示テキストをパーツとして送信し、応答から画像バイナリを抽出します。
// session.GenerativeClient を実装します。
type GeminiGenerator struct {
	aiClient     gemini.GenerativeModel
	model        string
	upscaleModel string
}

// NewGeminiGenerator は GeminiGenerator を初期化します。
// モデル名が空の場合はデフォルトを採用します。
func NewGeminiGenerator(aiClient gemini.GenerativeModel, model, upscaleModel string) (*GeminiGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient (gemini.GenerativeModel) is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if upscaleModel == "" {
		upscaleModel = DefaultUpscaleModel
	}

	return &GeminiGenerator{
		aiClient:     aiClient,
		model:        model,
		upscaleModel: upscaleModel,
	}, nil
}

// Generate は入力画像と指示テキストから新しい画像を生成します。
// 階層が ModelTierHighResolution の場合はアップスケール用モデルへ切り替えます。
// 候補ゼロは domain.ErrNoCandidate、テキストのみの応答は domain.ErrNoImageInResponse
// として返し、どちらも errors.Is(err, domain.ErrGenerationFailed) で判定できます。
func (g *GeminiGenerator) Generate(ctx context.Context, img domain.EncodedImage, instruction string, tier domain.ModelTier) (domain.EncodedImage, error) {
	if img.IsZero() {
		return domain.EncodedImage{}, fmt.Errorf("入力画像が空です")
	}

	model := g.model
	if tier == domain.ModelTierHighResolution {
		model = g.upscaleModel
	}

	parts := []*genai.Part{
		{Text: instruction},
		{InlineData: &genai.Blob{MIMEType: img.MimeType, Data: img.Data}},
	}

	slog.InfoContext(ctx, "Gemini画像変換リクエストを送信します", "model", model, "mime_type", img.MimeType)

	resp, err := g.aiClient.GenerateWithParts(ctx, model, parts, gemini.GenerateOptions{})
	if err != nil {
		return domain.EncodedImage{}, fmt.Errorf("Gemini生成リクエストに失敗しました: %w", err)
	}

	return parseToImage(resp)
}

// parseToImage は Gemini のレスポンスから最初の候補の画像バイナリを抽出します。
// 現在の仕様では最初の候補 (Candidate) のみを利用します。
func parseToImage(resp *gemini.Response) (domain.EncodedImage, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return domain.EncodedImage{}, domain.ErrNoCandidate
	}

	candidate := resp.RawResponse.Candidates[0]
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return domain.EncodedImage{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return domain.EncodedImage{}, fmt.Errorf("%w (FinishReason: %s)", domain.ErrNoImageInResponse, candidate.FinishReason)
	}

	return domain.EncodedImage{}, domain.ErrNoImageInResponse
}
