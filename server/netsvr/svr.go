package netsvr

import (
	"net/http"

	"github.com/zintix-labs/pegdrop/server/app"
)

// NetSvr 為可啟停的 HTTP server，由 server.Run 組裝並交給 app.App 管理生命週期。
// 路由之外另提供監聽位址與根 handler；其他層只面向 NetRouter。
type NetSvr interface {
	NetRouter
	app.Component

	// Address 回傳監聽位址（例如 ":5808"）。
	Address() string
	// Handler 回傳根 handler，供 httptest 直接驅動。
	Handler() http.Handler
}

// NetRouter 只有路由能力；Group 回呼拿不到 Run/Shutdown。
// 公開 API 只有 GET（查詢、驗證）與 POST（round 狀態轉換），不提供其他動詞。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)

	Group(path string, fn func(NetRouter))
}
