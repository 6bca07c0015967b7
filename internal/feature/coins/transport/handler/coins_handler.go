// Package handler はcoinsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"crypto_dashboard/internal/api"
	"crypto_dashboard/internal/feature/coins/domain"
	"crypto_dashboard/internal/feature/coins/domain/entity"
	"crypto_dashboard/internal/feature/coins/transport/http/dto"
	"crypto_dashboard/internal/feature/coins/usecase"
	"crypto_dashboard/internal/platform/cache"
)

// rateLimitMessage is the actionable message for provider 429s; the free
// public tier hits these routinely, so it must not look like a server bug.
const rateLimitMessage = "API rate limit exceeded. Please try again later."

// CoinsUsecase は市場データ操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type CoinsUsecase interface {
	ListCoins(ctx context.Context, page, perPage int, sort usecase.SortSpec) ([]entity.Coin, error)
	GetCoinDetail(ctx context.Context, id string) (*entity.CoinDetail, error)
	GetMarketChart(ctx context.Context, id string, days int) ([]entity.ChartPoint, error)
}

// CoinsHandler は市場データのHTTPリクエストを処理します。
type CoinsHandler struct {
	uc CoinsUsecase
}

// NewCoinsHandler は指定されたusecaseでCoinsHandlerの新しいインスタンスを生成します。
func NewCoinsHandler(uc CoinsUsecase) *CoinsHandler {
	return &CoinsHandler{uc: uc}
}

// List は市場一覧の1ページを返します。検索語とレンジフィルタは取得済みページに
// 対してのみ適用され、並び順はプロバイダ側のsortに委譲されます。
//
// エンドポイント例:
// GET /coins?page=1&per_page=50&sort=market_cap&order=desc&q=bit&min_price=100
func (h *CoinsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))
	sort := usecase.SortSpec{
		Key:   usecase.SortKey(c.DefaultQuery("sort", string(usecase.SortMarketCap))),
		Order: usecase.SortOrder(c.DefaultQuery("order", string(usecase.OrderDesc))),
	}

	coins, err := h.uc.ListCoins(requestContext(c), page, perPage, sort)
	if err != nil {
		status, msg := upstreamError(err)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	opts := usecase.FilterOptions{
		Sort:           sort,
		PriceRange:     rangeFromQuery(c, "min_price", "max_price"),
		MarketCapRange: rangeFromQuery(c, "min_market_cap", "max_market_cap"),
	}
	visible := usecase.ApplyFilters(coins, strings.TrimSpace(c.Query("q")), opts)

	out := make([]dto.CoinItem, 0, len(visible))
	for _, x := range visible {
		out = append(out, dto.FromCoin(x))
	}
	c.JSON(http.StatusOK, out)
}

// Detail は1銘柄の詳細を返します。プロバイダが知らないidは404です。
//
// エンドポイント例:
// GET /coins/bitcoin
func (h *CoinsHandler) Detail(c *gin.Context) {
	d, err := h.uc.GetCoinDetail(requestContext(c), c.Param("id"))
	if err != nil {
		status, msg := upstreamError(err)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, dto.CoinDetailResponse{
		CoinItem:       dto.FromCoin(d.Coin),
		Description:    d.Description,
		Homepage:       d.Homepage,
		BlockchainSite: d.BlockchainSite,
	})
}

// Chart は価格チャート系列を返します。daysに応じた粒度はusecaseが選びます。
//
// エンドポイント例:
// GET /coins/bitcoin/chart?days=7
func (h *CoinsHandler) Chart(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	points, err := h.uc.GetMarketChart(requestContext(c), c.Param("id"), days)
	if err != nil {
		status, msg := upstreamError(err)
		c.JSON(status, api.ErrorResponse{Error: msg})
		return
	}

	out := make([]dto.ChartPoint, 0, len(points))
	for _, p := range points {
		out = append(out, dto.ChartPoint{
			Time:  p.Time.UnixMilli(),
			Price: p.Price.InexactFloat64(),
		})
	}
	c.JSON(http.StatusOK, out)
}

// requestContext はrefresh=trueのリクエストにキャッシュバイパスの印を付けます。
// 手動リトライが古いキャッシュに阻まれないようにするためのものです。
func requestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if c.Query("refresh") == "true" {
		ctx = cache.WithRefresh(ctx)
	}
	return ctx
}

// rangeFromQuery は2つのクエリパラメータから数値レンジを組み立てます。
// 数値として読めない値は未指定として扱います。
func rangeFromQuery(c *gin.Context, minKey, maxKey string) usecase.Range {
	var r usecase.Range
	if v, err := decimal.NewFromString(c.Query(minKey)); err == nil {
		r.Min = &v
	}
	if v, err := decimal.NewFromString(c.Query(maxKey)); err == nil {
		r.Max = &v
	}
	return r
}

// upstreamError はゲートウェイのエラー分類をHTTPステータスと
// ユーザー向けメッセージに変換します。
func upstreamError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, rateLimitMessage
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "asset not found"
	default:
		// ネットワーク・パース・その他の上流エラーはまとめて502
		return http.StatusBadGateway, err.Error()
	}
}

