package domain

import (
	"errors"
	"fmt"
)

// ピクセルエンジン系のエラー。どちらもその呼び出し限りの終端エラーです（部分出力なし）。
var (
	// ErrDecode は入力バイト列を画像としてデコードできなかったことを表します。
	ErrDecode = errors.New("画像をデコードできませんでした")
	// ErrRender は再エンコード・リサンプリングなど描画面の取得に失敗したことを表します。
	ErrRender = errors.New("画像のレンダリングに失敗しました")
)

// 生成モデル系のエラー。
// ErrNoCandidate / ErrNoImageInResponse はどちらも ErrGenerationFailed をラップしており、
// セッション層は errors.Is(err, ErrGenerationFailed) の一本で判定できます。
var (
	ErrGenerationFailed = errors.New("画像を生成できませんでした")
	// ErrNoCandidate はモデルが候補を一つも返さなかったことを表します。
	ErrNoCandidate = fmt.Errorf("%w: 候補がありません", ErrGenerationFailed)
	// ErrNoImageInResponse はモデルがテキストのみを返し、画像が含まれなかったことを表します。
	ErrNoImageInResponse = fmt.Errorf("%w: 応答に画像が含まれていません", ErrGenerationFailed)
)

// セッション操作のゲート系エラー。
var (
	// ErrBusy は過渡状態中にトップレベル操作が呼ばれたことを表します。副作用はありません。
	ErrBusy = errors.New("別の操作が実行中です")
	// ErrEmptyPrompt は空（トリム後）のプロンプトが指定されたことを表します。
	ErrEmptyPrompt = errors.New("プロンプトが空です")
	// ErrNothingToUndo は履歴が1件のときに undo が呼ばれたことを表します。
	ErrNothingToUndo = errors.New("取り消せる変換がありません")
	// ErrNothingToReset は履歴が1件のときに reset が呼ばれたことを表します。
	ErrNothingToReset = errors.New("リセットする変換がありません")
	// ErrNoSession はセッションが存在しない状態で操作が呼ばれたことを表します。
	ErrNoSession = errors.New("セッションが開始されていません")
)

// ErrCredentialUnavailable は資格情報が取得できなかったことを表します。
// 致命的ではなく、アップスケールはベストエフォートで続行されます。
var ErrCredentialUnavailable = errors.New("資格情報を取得できませんでした")
