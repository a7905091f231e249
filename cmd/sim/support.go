package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/zintix-labs/quantro"
	"github.com/zintix-labs/quantro/demo/demo_configs"
	"github.com/zintix-labs/quantro/errs"
	"github.com/zintix-labs/quantro/sdk/core"
	"github.com/zintix-labs/quantro/sdk/policy"
	"github.com/zintix-labs/quantro/server/logger"
	"github.com/zintix-labs/quantro/spec"
	"github.com/zintix-labs/quantro/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        spec.ModeID
	worker    int
	ticks     int
	seed      int64
	replay    int
	out       string
	logmode   string
	pprofmode string
}

type modeFlag struct{ p *spec.ModeID }

func (f modeFlag) String() string {
	if f.p == nil {
		return "0"
	}
	return fmt.Sprint(uint(*f.p))
}

func (f modeFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return err
	}
	*f.p = spec.ModeID(uint(u))
	return nil
}

func bindVar() {
	cfg.id = 1
	flag.Var(modeFlag{&cfg.id}, "mode", "target mode id")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.ticks, "ticks", 1_000_000, "ticks per worker")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.IntVar(&cfg.replay, "replay", 0, "run a determinism replay of n ticks instead of a simulation")
	flag.StringVar(&cfg.out, "out", "table", "report format: table|yaml|json")
	flag.StringVar(&cfg.logmode, "log", "silence", "log mode: dev|prod|silence|trace")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 0 {
		seed, err := core.RandomSeed()
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed
	}
}

// 這裡解析並分支要執行的模擬器
func executeSimulator() error {
	if err := cfg.valid(); err != nil {
		return err
	}
	lm, err := logger.ParseLogMode(cfg.logmode)
	if err != nil {
		return err
	}
	q, err := quantro.NewAuto(
		core.Default(),
		quantro.Configs(demo_configs.FS),
		quantro.Policies(policy.DefaultRegistry()),
	)
	if err != nil {
		return err
	}
	q.SetLogger(logger.NewDefaultLogger(lm))
	ent, ok := q.EntryByID(cfg.id)
	if !ok {
		return errs.Warnf("mode %d not found", cfg.id)
	}
	cfg.name = ent.Name

	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	if cfg.replay > 0 {
		rp, err := q.NewReplay(cfg.id, cfg.seed)
		if err != nil {
			return err
		}
		p.Printf("%s[REPLAY] [MODE:%s] [SEED:%d] [TICKS:%d]%s\n", green, cfg.name, cfg.seed, cfg.replay, reset)
		rep, err := rp.Run(cfg.replay)
		if err != nil {
			return err
		}
		p.Printf("ok: rows=%d cascades=%d top_outs=%d\nafter=%s\n", rep.Rows, rep.Cascades, rep.TopOuts, rep.After)
		return nil
	}

	s, err := q.NewSimulatorWithSeed(cfg.id, cfg.seed)
	if err != nil {
		return err
	}
	p.Printf("%s[WORKERS:%d] [MODE:%s] [SEED:%d] [TICKS:%d]%s\n", green, cfg.worker, cfg.name, cfg.seed, cfg.worker*cfg.ticks, reset)
	var (
		st   *stats.StatReport
		used time.Duration
	)
	if cfg.worker == 1 {
		st, used, err = s.Run(cfg.ticks, true)
	} else {
		st, used, err = s.RunMP(cfg.ticks, cfg.worker, true)
	}
	if err != nil {
		return err
	}
	if cfg.out == "table" {
		st.StdOut(used)
		return nil
	}
	render, _ := stats.RenderFor(cfg.out)
	return st.WriteWith(os.Stdout, render)
}

func (cfg *config) valid() error {
	if cfg.worker < 1 || cfg.worker > 256 {
		return errs.NewWarn("value err : worker must be between 1 and 256")
	}
	if cfg.ticks < 1 {
		return errs.NewWarn("value err : ticks must > 0")
	}
	if cfg.replay < 0 {
		return errs.NewWarn("value err : replay must >= 0")
	}
	if _, ok := stats.RenderFor(cfg.out); !ok {
		return errs.Warnf("value err : unknown out format %q, want one of %v", cfg.out, stats.RenderNames())
	}
	return nil
}
