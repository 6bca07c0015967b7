package router

import (
	"github.com/gin-gonic/gin"

	coinshandler "crypto_dashboard/internal/feature/coins/transport/handler"
	watchlisthandler "crypto_dashboard/internal/feature/watchlist/transport/handler"
	platformhandler "crypto_dashboard/internal/platform/http/handler"
)

func NewRouter(coins *coinshandler.CoinsHandler, watchlist *watchlisthandler.WatchlistHandler) *gin.Engine {
	r := gin.Default()
	r.Use(RequestID())

	// 導通確認用
	r.GET("/healthz", platformhandler.Health)

	// 市場データ（読み取り専用、認証なし）
	r.GET("/coins", coins.List)
	r.GET("/coins/:id", coins.Detail)
	r.GET("/coins/:id/chart", coins.Chart)

	// ウォッチリスト（ローカル永続の単一ユーザー状態）
	r.GET("/watchlist", watchlist.List)
	r.GET("/watchlist/coins", watchlist.Coins)
	r.POST("/watchlist/:id", watchlist.Add)
	r.POST("/watchlist/:id/toggle", watchlist.Toggle)
	r.DELETE("/watchlist/:id", watchlist.Remove)
	r.DELETE("/watchlist", watchlist.Clear)

	return r
}
