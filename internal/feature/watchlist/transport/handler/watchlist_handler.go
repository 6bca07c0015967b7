// Package handler はwatchlistフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crypto_dashboard/internal/api"
	"crypto_dashboard/internal/feature/coins/domain"
	coinsentity "crypto_dashboard/internal/feature/coins/domain/entity"
	coinsdto "crypto_dashboard/internal/feature/coins/transport/http/dto"
)

// WatchlistUsecase はウォッチリスト操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type WatchlistUsecase interface {
	IDs() []string
	IsWatched(id string) bool
	Add(ctx context.Context, id string)
	Remove(ctx context.Context, id string)
	Toggle(ctx context.Context, id string) bool
	Clear(ctx context.Context)
	ResolveCoins(ctx context.Context) ([]coinsentity.Coin, []string, error)
}

// WatchlistHandler はウォッチリストのHTTPリクエストを処理します。
type WatchlistHandler struct {
	uc WatchlistUsecase
}

// NewWatchlistHandler は新しい WatchlistHandler を作成します。
func NewWatchlistHandler(uc WatchlistUsecase) *WatchlistHandler {
	return &WatchlistHandler{uc: uc}
}

// idsResponse はウォッチリストの識別子一覧のレスポンスです。
type idsResponse struct {
	IDs []string `json:"ids"`
}

// toggleResponse はトグル後の membership 状態のレスポンスです。
type toggleResponse struct {
	ID      string `json:"id"`
	Watched bool   `json:"watched"`
}

// coinsResponse は解決済みウォッチリストのレスポンスです。
// unresolvedには上位ページに現れなかった（描画できない）idが入ります。
type coinsResponse struct {
	Coins      []coinsdto.CoinItem `json:"coins"`
	Unresolved []string            `json:"unresolved"`
}

// List はウォッチリストの識別子一覧を返します。
//
// GET /watchlist
func (h *WatchlistHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, idsResponse{IDs: h.uc.IDs()})
}

// Coins はウォッチ中の銘柄を市場エントリとして返します。
//
// GET /watchlist/coins
func (h *WatchlistHandler) Coins(c *gin.Context) {
	coins, missing, err := h.uc.ResolveCoins(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "API rate limit exceeded. Please try again later."})
			return
		}
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: err.Error()})
		return
	}

	out := coinsResponse{
		Coins:      make([]coinsdto.CoinItem, 0, len(coins)),
		Unresolved: missing,
	}
	for _, x := range coins {
		out.Coins = append(out.Coins, coinsdto.FromCoin(x))
	}
	c.JSON(http.StatusOK, out)
}

// Add は指定idをウォッチリストに追加します。冪等です。
//
// POST /watchlist/:id
func (h *WatchlistHandler) Add(c *gin.Context) {
	id := c.Param("id")
	h.uc.Add(c.Request.Context(), id)
	c.JSON(http.StatusOK, toggleResponse{ID: id, Watched: true})
}

// Remove は指定idをウォッチリストから外します。冪等です。
//
// DELETE /watchlist/:id
func (h *WatchlistHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	h.uc.Remove(c.Request.Context(), id)
	c.JSON(http.StatusOK, toggleResponse{ID: id, Watched: false})
}

// Toggle は指定idのmembershipを反転し、反転後の状態を返します。
//
// POST /watchlist/:id/toggle
func (h *WatchlistHandler) Toggle(c *gin.Context) {
	id := c.Param("id")
	watched := h.uc.Toggle(c.Request.Context(), id)
	c.JSON(http.StatusOK, toggleResponse{ID: id, Watched: watched})
}

// Clear はウォッチリストを空にします。
//
// DELETE /watchlist
func (h *WatchlistHandler) Clear(c *gin.Context) {
	h.uc.Clear(c.Request.Context())
	c.JSON(http.StatusOK, idsResponse{IDs: []string{}})
}
