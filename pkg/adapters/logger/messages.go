package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Starting generation":                              "生成を開始します",
		"Generation completed successfully":                "生成が正常に完了しました",
		"Output saved to %s":                               "出力を %s に保存しました",
		"Loading frame from %s":                            "%s からフレームを読み込み中",
		"Loading photo %s":                                 "写真 %s を読み込み中",
		"Photo downscaled from %dx%d":                      "写真を %dx%d から縮小しました",
		"Restored adjustments saved at %s":                 "%s に保存された調整値を復元しました",
		"Exporting %s":                                     "%s で書き出し中",
		"Cannot export: frame and photo are both required": "書き出せません: フレームと写真の両方が必要です",

		// Orchestration failures
		"Failed to calculate layout: %s":  "レイアウトの計算に失敗しました: %s",
		"Failed to load frame: %s":        "フレームの読み込みに失敗しました: %s",
		"Failed to load photo: %s":        "写真の読み込みに失敗しました: %s",
		"Failed to export image: %s":      "画像の書き出しに失敗しました: %s",
		"Failed to write output: %s":      "出力の書き込みに失敗しました: %s",
		"Failed to save state: %s":        "調整値の保存に失敗しました: %s",
		"Failed to save debug render: %s": "デバッグ画像の保存に失敗しました: %s",
		"Ignoring saved state: %s":        "保存された調整値を無視します: %s",

		// Layout stage
		"Calculating layout":                                     "レイアウトを計算中",
		"Layout calculated: %.0fx%.0f canvas, photo radius %.1f": "レイアウト計算完了: %.0fx%.0f キャンバス, 写真の半径 %.1f",

		// Compositor
		"Session %s: %.0fx%.0f canvas at %.2fx":                "セッション %s: %.0fx%.0f キャンバス (%.2f倍)",
		"Discarding stale upload %d (current %d)":              "古いアップロード %d を破棄しました (現在 %d)",
		"Name %q overflows at minimum size %.0f (%.1f > %.1f)": "名前 %q は最小サイズ %.0f でもはみ出します (%.1f > %.1f)",
		"Exported %s %dx%d: %d bytes":                          "%s %dx%d を書き出しました: %d バイト",
		"Frame load attempt %d/%d from %s":                     "フレーム読み込み試行 %d/%d: %s",
		"Frame load attempt %d failed: %v":                     "フレーム読み込み試行 %d が失敗しました: %v",
		"Frame failed after %d attempt(s): %v":                 "%d 回試行しましたがフレームを読み込めませんでした: %v",
		"Frame loaded from %s after %d attempt(s)":             "%s からフレームを読み込みました (%d 回目)",

		// Upload stage
		"Downscaling photo from %dx%d to %dx%d": "写真を %dx%d から %dx%d に縮小中",
		"Photo accepted: %s %dx%d, %d bytes":    "写真を受け付けました: %s %dx%d, %d バイト",

		// Save stage
		"Wrote %d bytes to %s": "%d バイトを %s に書き込みました",

		// Batch stage
		"Rendering %d images with %d workers":      "%d 枚の画像を %d ワーカーで描画中",
		"Image %d (%q) failed: %v":                 "画像 %d (%q) の生成に失敗しました: %v",
		"Batch completed: %d of %d images written": "一括生成完了: %d / %d 枚を書き出しました",
		"Batch took %s":                            "一括生成の所要時間: %s",

		// Controller and watcher
		"Adjustments applied: name=%q zoom=%.2f offset=(%.0f,%.0f)": "調整値を適用しました: 名前=%q ズーム=%.2f オフセット=(%.0f,%.0f)",
		"Watching %s":                                               "%s を監視中",
		"Watcher error: %v":                                         "監視エラー: %v",
		"Applying changes failed: %v":                               "変更の適用に失敗しました: %v",
	})
}
