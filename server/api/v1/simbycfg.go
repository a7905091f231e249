package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/quantro"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/server/httperr"
)

// SetByJson 傳入模式設定（JSON 物件或 YAML 字串）以及希望模擬的 ticks
func (sh *SimHandler) SetByJson(w http.ResponseWriter, r *http.Request) {
	type SimRequestByCfg struct {
		Ticks   int             `json:"ticks"`
		Workers int             `json:"workers"`
		Cfg     json.RawMessage `json:"cfg,omitempty"`
		CfgYAML string          `json:"cfg_yaml,omitempty"`
		Seed    *int64          `json:"seed,omitempty"`
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 1. decode request
	req := new(SimRequestByCfg)
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20) // 5MB
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		httperr.Errs(w, errs.NewWarn("json decode failed: "+err.Error()))
		return
	}

	// 2. vaild ticks
	if req.Workers == 0 {
		req.Workers = 1
	}
	if req.Workers < 1 || req.Workers > maxWorkers {
		httperr.Errs(w, errs.Warnf("workers must be between 1 and %d", maxWorkers))
		return
	}
	if req.Ticks < 1 || req.Ticks*req.Workers > sh.MaxSimTicks {
		httperr.Errs(w, errs.Warnf("ticks*workers must be between 1 and %d", sh.MaxSimTicks))
		return
	}
	if (len(req.Cfg) == 0) == (req.CfgYAML == "") {
		httperr.Errs(w, errs.NewWarn("exactly one of cfg / cfg_yaml is required"))
		return
	}
	seed, err := seedOrRandom(req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 3. NewSimulator
	var sim *quantro.Simulator
	if req.CfgYAML != "" {
		sim, err = sh.Quantro.NewSimulatorByYAML([]byte(req.CfgYAML), seed)
	} else {
		sim, err = sh.Quantro.NewSimulatorByJSON(req.Cfg, seed)
	}
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	result, _, err := sim.RunMP(req.Ticks, req.Workers, false)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 4. 回傳Json
	writeJSON(w, result)
}
