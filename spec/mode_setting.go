package spec

import (
	"fmt"

	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/policy"
)

// ModeID 遊戲模式編號
type ModeID uint

// ModeSetting 包含建立一個 Board 所需的所有高階設定。
type ModeSetting struct {
	ModeName       string         `yaml:"mode_name"       json:"mode_name"`
	ModeID         ModeID         `yaml:"mode_id"         json:"mode_id"`
	PolicyKey      policy.Key     `yaml:"policy_key"      json:"policy_key"`
	PlanesInteract bool           `yaml:"planes_interact" json:"planes_interact"`
	BoardSetting   BoardSetting   `yaml:"board_setting"   json:"board_setting"`
	PieceSettings  []PieceSetting `yaml:"piece_settings"  json:"piece_settings"`
	RewardSetting  RewardSetting  `yaml:"reward_setting"  json:"reward_setting"`
	Extra          map[string]any `yaml:"extra"           json:"extra"`
}

// init
func (ms *ModeSetting) init() error {
	if err := ms.BoardSetting.Init(); err != nil {
		return err
	}
	for i := range ms.PieceSettings {
		if err := ms.PieceSettings[i].Init(); err != nil {
			return errs.Wrap(err, fmt.Sprintf("piece_settings[%d]", i))
		}
	}
	if err := ms.RewardSetting.Init(); err != nil {
		return err
	}
	return ms.valid()
}

// valid 執行最基本的設定檔檢查，如需更多驗證可在此擴充。
func (ms *ModeSetting) valid() error {
	if ms.ModeName == "" {
		return errs.NewFatal("empty mode_name")
	}
	if ms.PolicyKey == "" {
		return errs.NewFatal(fmt.Sprintf("mode_name: %s err:empty policy_key", ms.ModeName))
	}

	// 檢查 PieceSettings 不能為空
	if len(ms.PieceSettings) == 0 {
		return errs.NewFatal(fmt.Sprintf("mode_name: %s err:empty piece_settings", ms.ModeName))
	}

	bs := ms.BoardSetting
	names := make(map[string]struct{}, len(ms.PieceSettings))
	for _, ps := range ms.PieceSettings {
		if _, ok := names[ps.Name]; ok {
			return errs.NewFatal(fmt.Sprintf("mode_name: %s err:duplicate piece %s", ms.ModeName, ps.Name))
		}
		names[ps.Name] = struct{}{}
		if ps.Proto.Blocks.Rows() > bs.Rows || ps.Proto.Blocks.Cols() > bs.Columns {
			return errs.NewFatal(fmt.Sprintf("mode_name: %s err:piece %s larger than board", ms.ModeName, ps.Name))
		}
	}
	return nil
}

// TotalWeight 所有方塊的權重總和
func (ms *ModeSetting) TotalWeight() int {
	sum := 0
	for _, ps := range ms.PieceSettings {
		sum += ps.Weight
	}
	return sum
}

// Piece 依名稱查方塊設定
func (ms *ModeSetting) Piece(name string) (*PieceSetting, bool) {
	for i := range ms.PieceSettings {
		if ms.PieceSettings[i].Name == name {
			return &ms.PieceSettings[i], true
		}
	}
	return nil, false
}
