// Package app 定義應用程式根目錄用以管理長期運行元件的最小生命週期抽象。
package app

import (
	"context"
	"sync"
)

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
// - Run() 應該是阻塞呼叫，直到元件停止為止（正常或錯誤）。
// - Shutdown(ctx) 用於要求優雅關閉；實作方應該尊重 ctx deadline/cancel。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// OnClose 把一個關閉函式包成 Component：Run 阻塞到 Shutdown，Shutdown 呼叫 fn 一次
func OnClose(fn func()) Component {
	return &closer{fn: fn, done: make(chan struct{})}
}

type closer struct {
	fn   func()
	once sync.Once
	done chan struct{}
}

func (c *closer) Run() error {
	<-c.done
	return nil
}

func (c *closer) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		if c.fn != nil {
			c.fn()
		}
		close(c.done)
	})
	return nil
}
