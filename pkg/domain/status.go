package domain

// Status は編集セッションの処理状態です。
// Idle / Complete / Error 以外はオーケストレーションだけが出入りする過渡状態であり、
// 過渡状態の間は新しいトップレベル操作を受け付けません。
type Status string

const (
	StatusIdle               Status = "idle"
	StatusUploading          Status = "uploading"
	StatusProcessing         Status = "processing"
	StatusRemovingBackground Status = "removing_background"
	StatusUpscaling          Status = "upscaling"
	StatusComplete           Status = "complete"
	StatusError              Status = "error"
)

// Ready は新しいトップレベル操作を受け付けられる状態かどうかを返します。
// Error は「直前の試行が失敗した」ことを表示層へ伝えるための別名であり、
// ゲートとしては Idle / Complete と同じ扱いです。
func (s Status) Ready() bool {
	switch s {
	case StatusIdle, StatusComplete, StatusError:
		return true
	}
	return false
}

// InFlight は機械駆動の過渡状態（処理中）かどうかを返します。
func (s Status) InFlight() bool {
	switch s {
	case StatusUploading, StatusProcessing, StatusRemovingBackground, StatusUpscaling:
		return true
	}
	return false
}

// String は Status を文字列として返します。slog の属性値にそのまま使えます。
func (s Status) String() string {
	return string(s)
}
