package netsvr

import (
	"net/http"

	"github.com/zintix-labs/quantro/server/app"
)

// NetSvr 實驗室 server：可註冊路由、可被 app 管理啟停，也能直接當 http.Handler 測試。
// 換成其他框架時實作這個介面即可，handler 一律是 net/http 形式。
type NetSvr interface {
	NetRouter
	app.Component
	http.Handler
	Address() string
}

// NetRouter 只有路由能力。Group 的子路由拿不到 Run / Shutdown。
//
// /v1 只用到 GET 與 POST：盤面狀態全在請求裡，沒有需要 PUT / DELETE 的資源。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Group(path string, fn func(NetRouter))
}
