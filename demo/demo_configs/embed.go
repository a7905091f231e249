// Package demo_configs 內建的 standard / retro 模式設定檔
package demo_configs

import "embed"

//go:embed standard.yaml retro.yaml
var FS embed.FS
