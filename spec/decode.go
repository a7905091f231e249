package spec

import (
	"bytes"
	"encoding/json"

	"github.com/zintix-labs/quantro/errs"
	"gopkg.in/yaml.v3"
)

// GetModeSettingByYAML 解析 YAML 設定並完成 init（預設值、piece 編碼、權重檢查）
func GetModeSettingByYAML(data []byte) (*ModeSetting, error) {
	return decodeModeSetting("yaml", data, yaml.Unmarshal)
}

// GetModeSettingByJSON 同 GetModeSettingByYAML
func GetModeSettingByJSON(data []byte) (*ModeSetting, error) {
	return decodeModeSetting("json", data, json.Unmarshal)
}

func decodeModeSetting(format string, data []byte, unmarshal func([]byte, any) error) (*ModeSetting, error) {
	ms := new(ModeSetting)
	if err := unmarshal(data, ms); err != nil {
		return nil, errs.WrapWithExtra(errs.ErrParse, "mode setting", format+": "+err.Error())
	}
	if err := ms.init(); err != nil {
		return nil, errs.Wrap(err, "mode setting init")
	}
	return ms, nil
}

// DecodeExtra 把 ms.Extra 轉成呼叫端自訂的 struct；多寫或拼錯的欄位視為錯誤
func DecodeExtra[T any](ms *ModeSetting, out *T) error {
	bs, err := yaml.Marshal(ms.Extra)
	if err != nil {
		return errs.Wrap(err, "marshal extra")
	}
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return errs.WrapWithExtra(errs.ErrParse, "decode extra", err.Error())
	}
	return nil
}
