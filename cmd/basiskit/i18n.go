// Package main provides localization for the basiskit CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Inspect and transcode .basis texture containers.": ".basis テクスチャコンテナを検査・トランスコードします。",

		// Runtime messages
		"No input files":                        "入力ファイルがありません",
		"Summary saved to %s":                   "サマリーを %s に保存しました",
		"OK   %s":                               "OK   %s",
		"FAIL %s: %s":                           "NG   %s: %s",
		"FAIL %s: %s checksum mismatch":         "NG   %s: %s チェックサム不一致",
		"%d of %d containers failed validation": "%[2]d 件中 %[1]d 件のコンテナが検証に失敗しました",
		"basiskit version %s":                   "basiskit バージョン %s",
		"Native engine: %s":                     "ネイティブエンジン: %s",
		"yes":                                   "あり",
		"no":                                    "なし",

		// Summary content
		"Transcode Summary": "トランスコードサマリー",
		"Generated":         "生成日時",
		"Engine":            "エンジン",
		"block decoding":    "ブロックデコード",
		"Formats":           "出力形式",
		"Checksums":         "チェックサム",
		"Decode flags":      "デコードフラグ",
		"Containers":        "コンテナ数",
		"failed":            "失敗",
		"Failed":            "失敗",
		"Property":          "項目",
		"Value":             "値",
		"Format":            "形式",
		"Texture type":      "テクスチャ種別",
		"Compression":       "圧縮",
		"Size":              "サイズ",
		"OK":                "正常",
		"Mismatch":          "不一致",
		"not checked":       "未検査",
		"Transcode time":    "トランスコード時間",
		"Output":            "出力先",
		"Images":            "画像",
		"Levels":            "レベル",
		"Outputs":           "出力",
		"Total":             "合計",
		"Skipped formats":   "スキップした形式",
		"Written":           "書き出し",
		"raw files":         "生データ",
		"previews":          "プレビュー",
		"contact sheets":    "コンタクトシート",
		"Generated by":      "生成:",
	})
}
