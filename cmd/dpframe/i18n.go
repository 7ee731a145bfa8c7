// Package main provides localization for the dpframe CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":                "入力",
		"Composition":          "構図",
		"Surface and Template": "キャンバスとテンプレート",
		"Output":               "出力先",
		"State":                "保存状態",
		"Debug":                "デバッグ",
		"Logging":              "ログ",

		// Root command
		"Compose profile pictures with a decorative frame":                                     "装飾フレーム付きのプロフィール画像を作成",
		"dpframe clips a photo into a circle, lays a frame over it and writes the name below.": "dpframeは写真を円形に切り抜き、フレームを重ね、その下に名前を描きます。",

		// Generate command
		"Generate a framed profile picture":                          "フレーム付きプロフィール画像を生成",
		"Compose the photo, frame and name once and save the image.": "写真・フレーム・名前を合成して画像を保存します。",

		// Watch command
		"Regenerate whenever an adjustment file changes":                         "調整ファイルの変更に合わせて再生成",
		"Watch a YAML adjustment file and regenerate the image on every change.": "YAML形式の調整ファイルを監視し、変更のたびに画像を再生成します。",

		// Batch command
		"Generate one picture per name from a CSV file":                            "CSVファイルの名前ごとに画像を生成",
		"Read name[,photo] rows and render them concurrently with a shared frame.": "name[,photo] 形式の行を読み込み、共通のフレームで並列に描画します。",
		"Photo used for rows without their own":                                    "写真の指定がない行で使う写真",
		"Number of parallel workers (default: CPU count)":                          "並列ワーカー数 (デフォルト: CPU数)",
		"A names file is required":                                                 "名前ファイルを指定してください",
		"The names file has no rows":                                               "名前ファイルに行がありません",
		"%d of %d images failed":                                                   "%d / %d 枚の画像の生成に失敗しました",

		// Reset command
		"Clear the saved adjustments":                            "保存された調整値を消去",
		"Remove the adjustment record restored on the next run.": "次回の実行時に復元される調整値の記録を削除します。",

		// Version command
		"Show version information":        "バージョン情報を表示",
		"Display the version of dpframe.": "dpframeのバージョンを表示します。",
		"dpframe version %s":              "dpframe バージョン %s",

		// Input flags
		"YAML configuration file":                         "YAML設定ファイル",
		"Frame image path or http(s) URL":                 "フレーム画像のパスまたはhttp(s) URL",
		"Frame load attempts (default: 3)":                "フレーム読み込みの試行回数（デフォルト: 3）",
		"Delay between frame load attempts (default: 1s)": "フレーム読み込みの再試行間隔（デフォルト: 1s）",
		"Largest accepted photo in MB (default: 5)":       "受け付ける写真の最大サイズ（MB、デフォルト: 5）",

		// Composition flags
		"Name shown under the photo (max 25 characters)": "写真の下に表示する名前（最大25文字）",
		"Photo zoom (0.5 to 2)":                          "写真のズーム（0.5〜2）",
		"Horizontal photo offset (-100 to 100)":          "写真の水平オフセット（-100〜100）",
		"Vertical photo offset (-100 to 100)":            "写真の垂直オフセット（-100〜100）",

		// Surface flags
		"Surface preset (square, portrait)":      "キャンバスのプリセット（square, portrait）",
		"Logical surface width (default: 1080)":  "論理キャンバス幅（デフォルト: 1080）",
		"Logical surface height (default: 1080)": "論理キャンバス高さ（デフォルト: 1080）",
		"Device pixel ratio (default: 1)":        "デバイスピクセル比（デフォルト: 1）",
		"Background color (hex, e.g., #ffffff)":  "背景色（16進数、例: #ffffff）",
		"Smallest name font size (default: 30)":  "名前の最小フォントサイズ（デフォルト: 30）",
		"Largest name font size (default: 60)":   "名前の最大フォントサイズ（デフォルト: 60）",
		"Horizontal padding inside the name box": "名前欄の左右の余白",

		// Output flags
		"Output file path (default: generated from the name)": "出力ファイルパス（デフォルト: 名前から生成）",
		"Directory for generated file names (default: .)":     "生成したファイル名の保存先ディレクトリ（デフォルト: .）",
		"File name suffix (default: dp)":                      "ファイル名の接尾辞（デフォルト: dp）",
		"Output format (png, jpeg)":                           "出力形式（png, jpeg）",
		"JPEG quality (0 to 1, overrides quality preset)":     "JPEG品質（0〜1、品質プリセットを上書き）",
		"Quality preset (low, medium, high)":                  "品質プリセット（low, medium, high）",
		"Export even without a photo or frame":                "写真やフレームがなくても書き出す",
		"Output execution summary to file (Markdown format)":  "実行サマリーをファイルに出力（Markdown形式）",

		// State flags
		"Do not restore saved adjustments":                     "保存された調整値を復元しない",
		"Do not save adjustments after export":                 "書き出し後に調整値を保存しない",
		"Directory holding the saved adjustments (default: .)": "調整値を保存するディレクトリ（デフォルト: .）",

		// Debug flags
		"Enable debug output":                           "デバッグ出力を有効化",
		"Directory for debug output (default: ./debug)": "デバッグ出力のディレクトリ（デフォルト: ./debug）",

		// Logging flags
		"Log level (debug, info, warn, error)": "ログレベル（debug, info, warn, error）",
		"Also write logs to a rotated file":    "ローテーションするログファイルにも書き込む",
		"Suppress all log output":              "全てのログ出力を抑制",

		// Runtime messages
		"Interrupted, shutting down...":                              "中断されました。シャットダウン中...",
		"A frame is required (--frame or frame: in the config file)": "フレームが必要です（--frame または設定ファイルの frame:）",
		"An adjustment file argument is required":                    "調整ファイルの引数が必要です",
		"Watching %s for changes, press Ctrl+C to stop":              "%s の変更を監視しています。Ctrl+Cで終了します",
		"Waiting for both a photo and the frame before exporting":    "写真とフレームが揃うまで書き出しを待機しています",
		"Saved adjustments cleared: %s":                              "保存された調整値を消去しました: %s",
		"Summary saved to %s":                                        "サマリーを %s に保存しました",
		"Failed to write summary: %s":                                "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"DP Summary":              "DPサマリー",
		"Generated At":            "生成日時",
		"Session":                 "セッション",
		"Item":                    "項目",
		"Value":                   "値",
		"File":                    "ファイル",
		"Format":                  "形式",
		"File Size":               "ファイルサイズ",
		"Canvas Size":             "キャンバスサイズ",
		"Pixel Ratio":             "ピクセル比",
		"Pixel Size":              "ピクセルサイズ",
		"Name":                    "名前",
		"overflows":               "はみ出し",
		"Font Size":               "フォントサイズ",
		"Zoom":                    "ズーム",
		"Offset":                  "オフセット",
		"Restored":                "復元",
		"Yes":                     "はい",
		"Inputs":                  "入力",
		"Photo":                   "写真",
		"Frame":                   "フレーム",
		"None":                    "なし",
		"downscaled":              "縮小済み",
		"attempt(s)":              "回試行",
		"loaded":                  "読み込み済み",
		"failed":                  "失敗",
		"unloaded":                "未読み込み",
		"Duration":                "所要時間",
		"Generated by dpframe %s": "dpframe %s で生成",
	})
}
