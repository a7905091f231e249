package v1

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/zintix-labs/quantro"
	"github.com/zintix-labs/quantro/dto"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/server/httperr"
	"github.com/zintix-labs/quantro/spec"
	"github.com/zintix-labs/quantro/stats"
)

const maxWorkers = 64

type SimHandler struct {
	Quantro     *quantro.Quantro
	MaxSimTicks int
}

func NewSimHandler(q *quantro.Quantro, maxTicks int) (*SimHandler, error) {
	if q == nil {
		return nil, errs.NewFatal("quantro is required")
	}
	return &SimHandler{Quantro: q, MaxSimTicks: maxTicks}, nil
}

func (sh *SimHandler) Sim(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type SimResponse struct {
		Seed     int64             `json:"seed"`
		Stats    *stats.StatReport `json:"stats"`
		UsedTime int64             `json:"used_ms"`
	}
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(dto.SimRequest)
	if q.Method == http.MethodGet {
		qs := q.URL.Query()
		id, err := requiredInt(qs, "mode_id")
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		req.ModeID = spec.ModeID(id)
		if req.Ticks, err = requiredInt(qs, "ticks"); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Workers, err = optionalInt(qs, "workers", 1); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Seed, err = optionalSeed(qs); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	if q.Method == http.MethodPost {
		if err := dto.DecodeJSON(q, req); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Workers == 0 {
			req.Workers = 1
		}
	}
	// 業務檢驗
	if _, ok := sh.Quantro.EntryByID(req.ModeID); !ok {
		httperr.Errs(w, errs.NewWarn("mode_id not found"))
		return
	}
	if req.Workers < 1 || req.Workers > maxWorkers {
		httperr.Errs(w, errs.Warnf("workers must be between 1 and %d", maxWorkers))
		return
	}
	if req.Ticks < 1 || req.Ticks*req.Workers > sh.MaxSimTicks {
		httperr.Errs(w, errs.Warnf("ticks*workers must be between 1 and %d", sh.MaxSimTicks))
		return
	}
	seed, err := seedOrRandom(req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	sim, err := sh.Quantro.NewSimulatorWithSeed(req.ModeID, seed)
	if err != nil {
		// 這裡的錯誤是來自 quantro 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build simulator err: %d", req.ModeID)))
		return
	}
	st, used, err := sim.RunMP(req.Ticks, req.Workers, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "simulate err"))
		return
	}
	writeJSON(w, SimResponse{Seed: seed, Stats: st, UsedTime: used.Milliseconds()})
}

// Replay 兩台相同 seed 的 Machine 同步執行並逐步比對；可帶 board_b64u 指定起始盤面
func (sh *SimHandler) Replay(w http.ResponseWriter, q *http.Request) {
	type ReplayRequest struct {
		ModeID spec.ModeID `json:"mode_id"`
		Ticks  int         `json:"ticks"`
		Seed   *int64      `json:"seed,omitempty"`
		Board  string      `json:"board_b64u,omitempty"`
	}
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(ReplayRequest)
	if q.Method == http.MethodGet {
		qs := q.URL.Query()
		id, err := requiredInt(qs, "mode_id")
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		req.ModeID = spec.ModeID(id)
		if req.Ticks, err = requiredInt(qs, "ticks"); err != nil {
			httperr.Errs(w, err)
			return
		}
		if req.Seed, err = optionalSeed(qs); err != nil {
			httperr.Errs(w, err)
			return
		}
		req.Board = qs.Get("board_b64u")
	}
	if q.Method == http.MethodPost {
		if err := dto.DecodeJSON(q, req); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	seed, err := seedOrRandom(req.Seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rp, err := sh.Quantro.NewReplay(req.ModeID, seed)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	var rep quantro.ReplayReport
	if req.Board != "" {
		rep, err = rp.RestoreRun(req.Board, req.Ticks)
	} else {
		rep, err = rp.Run(req.Ticks)
	}
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, rep)
}

func requiredInt(qs url.Values, key string) (int, error) {
	s := qs.Get(key)
	if s == "" {
		return 0, errs.Warnf("%s is required", key)
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.Warnf("%s must be integer", key)
	}
	return v, nil
}

func optionalInt(qs url.Values, key string, def int) (int, error) {
	if qs.Get(key) == "" {
		return def, nil
	}
	return requiredInt(qs, key)
}

func optionalSeed(qs url.Values) (*int64, error) {
	s := qs.Get("seed")
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errs.NewWarn("seed must be int64")
	}
	return &v, nil
}

func seedOrRandom(seed *int64) (int64, error) {
	if seed != nil {
		return *seed, nil
	}
	return core.RandomSeed()
}
