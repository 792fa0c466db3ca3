package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Severity tags for uncolored output
		"warning: ": "警告: ",
		"error: ":   "エラー: ",

		// Orchestration level messages (info)
		"Starting pipeline":                                     "パイプラインを開始します",
		"Pipeline completed successfully":                       "パイプラインが正常に完了しました",
		"Processing %s":                                         "%s を処理中",
		"Processing %d files with %d workers":                   "%d ファイルを %d ワーカーで処理中",
		"Unwrapped %s container: %d -> %d bytes":                "%s コンテナを展開: %d -> %d バイト",
		"Container: %s, %d images, texture type %s":             "コンテナ: %s, %d 画像, テクスチャ種別 %s",
		"Transcoding to %d formats":                             "%d 形式へトランスコード中",
		"Transcoded %d levels (%d bytes) in %d ms":              "%d レベルをトランスコードしました (%d バイト, %d ms)",
		"Output saved to %s":                                    "出力を %s に保存しました",
		"Using %s engine":                                       "%s エンジンを使用します",
		"Interrupted, shutting down...":                         "中断されました。シャットダウン中...",
		"Initializing transcoder tables":                        "トランスコーダーのテーブルを初期化中",
		"Initializing native transcoder tables":                 "ネイティブトランスコーダーのテーブルを初期化中",
		"Transcoding pass started (%d bytes)":                   "トランスコードを開始 (%d バイト)",
		"Transcoding pass finished":                             "トランスコードが完了しました",
		"Transcoding %d levels to %d formats":                   "%d レベルを %d 形式にトランスコード中",
		"Transcoded %d outputs (%d bytes) in %s":                "%d 件を出力しました (%d バイト, %s)",
		"Rejected %s output for %s source":                      "%[2]s ソースから %[1]s への出力は拒否されました",
		"Exported %d raw files, %d previews, %d contact sheets": "生データ %d 件, プレビュー %d 件, コンタクトシート %d 件を書き出しました",

		// Warnings
		"Skipping %s: %v":                                        "%s をスキップします: %v",
		"Checksum mismatch (%s)":                                 "チェックサムが一致しません (%s)",
		"Container has no image %d":                              "コンテナに画像 %d はありません",
		"Image %d has no level %d":                               "画像 %d にレベル %d はありません",
		"No preview for image %d level %d %s: %v":                "画像 %d レベル %d (%s) のプレビューを作成できません: %v",
		"Wasm engine unavailable: %v":                            "WASM エンジンは利用できません: %v",
		"No files match %s":                                      "%s に一致するファイルはありません",
		"This engine reads metadata only; transcoding will fail": "このエンジンはメタデータのみ読み取れます。トランスコードは失敗します",

		// Errors
		"Failed to read %s: %s":       "%s の読み込みに失敗しました: %s",
		"Failed to transcode %s: %s":  "%s のトランスコードに失敗しました: %s",
		"Failed to write output: %s":  "出力の書き込みに失敗しました: %s",
		"Failed to write summary: %s": "サマリーの書き込みに失敗しました: %s",
	})
}
