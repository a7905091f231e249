package spec

import (
	"testing"

	"github.com/zintix-labs/quantro/sdk/place"
	"github.com/zintix-labs/quantro/sdk/ptype"
	"github.com/zintix-labs/quantro/sdk/qo"
)

const modeYAML = `
mode_name: unit
mode_id: 7
policy_key: standard
board_setting:
  columns: 6
  rows: 12
piece_settings:
  - name: t
    category: tetromino
    sub: t
    weight: 3
    shape:
      - ".a."
      - "aaa"
  - name: bridge
    category: domino
    sub: line
    weight: 1
    shape:
      - "tb"
reward_setting:
  kinds: [valley, corner]
  every: 4
  min_blocks: 1
  max_blocks: 3
  orientations: [[S0, F0], [S1]]
extra:
  label: hello
  depth: 2
`

func TestModeSettingYAML(t *testing.T) {
	ms, err := GetModeSettingByYAML([]byte(modeYAML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ms.ModeID != 7 || ms.BoardSetting.BoardSize != 72 || !ms.BoardSetting.RestOnFloor() {
		t.Fatalf("unexpected board: %+v", ms.BoardSetting)
	}
	if ms.TotalWeight() != 4 {
		t.Fatalf("unexpected total weight %d", ms.TotalWeight())
	}

	tp := ms.PieceSettings[0]
	if !ptype.Is(tp.Type, ptype.Tetromino, ptype.TetrominoT) || ptype.Combination(tp.Type) != 1111 {
		t.Fatalf("unexpected t type %d", tp.Type)
	}
	if tp.Proto.Blocks.At(0, 1, 1) != qo.S0 || tp.Proto.Blocks.At(0, 1, 0) != qo.NO || tp.Proto.Blocks.At(0, 0, 2) != qo.S0 {
		t.Fatalf("unexpected t shape\n%s", tp.Proto.Render())
	}

	// ST 在個位數（第 0 個方塊），S1 在十位數
	bp := ms.PieceSettings[1]
	if ptype.Combination(bp.Type) != int(qo.S1)*10+int(qo.ST) {
		t.Fatalf("unexpected bridge combination %d", ptype.Combination(bp.Type))
	}
	if bp.Proto.Blocks.At(1, 0, 0) != qo.ST || bp.Proto.Blocks.At(0, 0, 1) != qo.NO {
		t.Fatalf("unexpected bridge planes\n%s", bp.Proto.Render())
	}

	rs := ms.RewardSetting
	if !rs.Enabled() || len(rs.Kinds) != 2 || rs.Kinds[1] != place.Corner {
		t.Fatalf("unexpected reward kinds %+v", rs.Kinds)
	}
	set := rs.PlaceSettings(true)
	if !set.PlanesInteract || len(set.Orientations[0]) != 2 || set.Orientations[1][0] != qo.S1 {
		t.Fatalf("unexpected place settings %+v", set)
	}
}

func TestModeSettingJSON(t *testing.T) {
	js := `{"mode_name":"j","mode_id":1,"policy_key":"retro","planes_interact":true,
	"board_setting":{"columns":4,"rows":4,"floor_support":false},
	"piece_settings":[{"name":"dot","category":"monomino","sub":"single","weight":1,"shape":["a"]}]}`
	ms, err := GetModeSettingByJSON([]byte(js))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ms.BoardSetting.RestOnFloor() {
		t.Fatalf("floor_support false should disable floor rest")
	}
	if ms.RewardSetting.Enabled() {
		t.Fatalf("reward should be disabled by default")
	}
}

func TestModeSettingErrors(t *testing.T) {
	cases := map[string]string{
		"bad dims":      "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 0, rows: 3}\n",
		"no pieces":     "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 3, rows: 3}\n",
		"block count":   "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 3, rows: 3}\npiece_settings: [{name: a, category: tromino, sub: line, weight: 1, shape: [aa]}]\n",
		"unknown sub":   "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 3, rows: 3}\npiece_settings: [{name: a, category: domino, sub: corner, weight: 1, shape: [aa]}]\n",
		"bad cell":      "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 3, rows: 3}\npiece_settings: [{name: a, category: domino, sub: line, weight: 1, shape: [az]}]\n",
		"too large":     "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 1, rows: 3}\npiece_settings: [{name: a, category: domino, sub: line, weight: 1, shape: [aa]}]\n",
		"unknown kind":  "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 3, rows: 3}\npiece_settings: [{name: a, category: monomino, sub: single, weight: 1, shape: [a]}]\nreward_setting: {kinds: [cliff], every: 1, max_blocks: 1}\n",
		"zero weight":   "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 3, rows: 3}\npiece_settings: [{name: a, category: monomino, sub: single, weight: 0, shape: [a]}]\n",
		"missing key":   "mode_name: x\nboard_setting: {columns: 3, rows: 3}\npiece_settings: [{name: a, category: monomino, sub: single, weight: 1, shape: [a]}]\n",
		"duplicate pc":  "mode_name: x\npolicy_key: standard\nboard_setting: {columns: 3, rows: 3}\npiece_settings: [{name: a, category: monomino, sub: single, weight: 1, shape: [a]}, {name: a, category: monomino, sub: single, weight: 1, shape: [b]}]\n",
	}
	for name, y := range cases {
		if _, err := GetModeSettingByYAML([]byte(y)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

type unitExtra struct {
	Label string `yaml:"label"`
	Depth int    `yaml:"depth"`
}

func TestDecodeExtra(t *testing.T) {
	ms, err := GetModeSettingByYAML([]byte(modeYAML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var ex unitExtra
	if err := DecodeExtra(ms, &ex); err != nil {
		t.Fatalf("decode extra: %v", err)
	}
	if ex.Label != "hello" || ex.Depth != 2 {
		t.Fatalf("unexpected extra %+v", ex)
	}

	ms.Extra["unknown"] = true
	if err := DecodeExtra(ms, &ex); err == nil {
		t.Fatalf("unknown field should fail")
	}
}
