// Command dashboard is an interactive terminal client for the crypto market
// dashboard. It talks to the provider directly through the same gateway the
// server uses, keeps the watchlist in the local database, and coordinates
// fetches through the view controllers (debounced search, generation-tagged
// loads, skeleton/error/content states).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"crypto_dashboard/internal/app/di"
	"crypto_dashboard/internal/feature/coins/domain/entity"
	"crypto_dashboard/internal/feature/coins/usecase"
	watchlistadapters "crypto_dashboard/internal/feature/watchlist/adapters"
	"crypto_dashboard/internal/feature/watchlist/store"
	infradb "crypto_dashboard/internal/platform/db"
	"crypto_dashboard/internal/shared/format"
	"crypto_dashboard/internal/view"

	"github.com/shopspring/decimal"
)

// app holds the market-list view state shared between the REPL goroutine and
// the debounce/fetch callbacks.
type app struct {
	mu      sync.Mutex
	page    int
	sort    usecase.SortSpec
	query   string
	filters usecase.FilterOptions

	coins     *usecase.CoinsUsecase
	watchlist *store.WatchlistStore

	listCtl   *view.Controller[[]entity.Coin]
	detailCtl *view.Controller[*entity.CoinDetail]
	chartCtl  *view.Controller[[]entity.ChartPoint]
	debouncer *view.Debouncer
}

func main() {
	db := infradb.OpenDB()
	watchlistStore := store.New(context.Background(), watchlistadapters.NewWatchlistRepository(db))

	a := &app{
		page:      1,
		sort:      usecase.DefaultSort,
		coins:     usecase.NewCoinsUsecase(di.NewMarket(0)),
		watchlist: watchlistStore,
		debouncer: view.NewDebouncer(view.SearchDebounceDelay),
	}
	a.listCtl = view.NewController(a.renderList)
	a.detailCtl = view.NewController(renderDetail)
	a.chartCtl = view.NewController(renderChart)

	// ウォッチリスト変更を購読して件数を表示し直す
	watchlistStore.Subscribe(func(ids []string) {
		fmt.Printf("watchlist: %d assets\n", len(ids))
	})

	fmt.Println("crypto dashboard - type 'help' for commands")
	a.reloadList()

	sc := bufio.NewScanner(os.Stdin)
	for fmt.Print("> "); sc.Scan(); fmt.Print("> ") {
		if !a.dispatch(strings.Fields(sc.Text())) {
			return
		}
	}
}

// dispatch runs one REPL command. Returns false to quit.
func (a *app) dispatch(args []string) bool {
	if len(args) == 0 {
		return true
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "quit", "q":
		a.debouncer.Stop()
		return false
	case "help":
		printHelp()
	case "list", "reload":
		a.reloadList()
	case "page":
		if len(rest) == 1 {
			if n, err := strconv.Atoi(rest[0]); err == nil && n >= 1 {
				a.mu.Lock()
				a.page = n
				a.mu.Unlock()
				a.reloadList()
				break
			}
		}
		fmt.Println("usage: page <n>")
	case "sort":
		if len(rest) == 2 {
			s := usecase.SortSpec{Key: usecase.SortKey(rest[0]), Order: usecase.SortOrder(rest[1])}
			if s.Valid() {
				a.mu.Lock()
				a.sort = s
				a.mu.Unlock()
				a.reloadList()
				break
			}
		}
		fmt.Println("usage: sort <market_cap|price|volume|price_change_24h> <asc|desc>")
	case "search":
		// キーストロークごとに呼ばれる想定の入り口。静止期間の後に1回だけ反映する。
		q := strings.Join(rest, " ")
		a.debouncer.Trigger(func() {
			a.mu.Lock()
			a.query = strings.TrimSpace(q)
			a.mu.Unlock()
			a.renderList(a.listCtl.Snapshot())
		})
	case "price":
		a.setRange(rest, true)
	case "cap":
		a.setRange(rest, false)
	case "coin":
		if len(rest) != 1 {
			fmt.Println("usage: coin <id>")
			break
		}
		a.detailCtl.LoadSync(context.Background(), func(ctx context.Context) (*entity.CoinDetail, error) {
			return a.coins.GetCoinDetail(ctx, rest[0])
		})
	case "chart":
		if len(rest) != 2 {
			fmt.Println("usage: chart <id> <1|7|30|90>")
			break
		}
		days, _ := strconv.Atoi(rest[1])
		a.chartCtl.LoadSync(context.Background(), func(ctx context.Context) ([]entity.ChartPoint, error) {
			return a.coins.GetMarketChart(ctx, rest[0], days)
		})
	case "watch":
		if len(rest) != 1 {
			fmt.Println("usage: watch <id>")
			break
		}
		a.watchlist.Toggle(context.Background(), rest[0])
	case "watchlist":
		for _, id := range a.watchlist.IDs() {
			fmt.Println("  " + id)
		}
	case "clear":
		a.watchlist.Clear(context.Background())
	default:
		fmt.Printf("unknown command %q - type 'help'\n", cmd)
	}
	return true
}

// setRange parses "<min|-> <max|->" into the price or market cap range.
func (a *app) setRange(rest []string, price bool) {
	if len(rest) != 2 {
		fmt.Println("usage: price|cap <min|-> <max|->")
		return
	}
	var r usecase.Range
	if v, err := decimal.NewFromString(rest[0]); err == nil {
		r.Min = &v
	}
	if v, err := decimal.NewFromString(rest[1]); err == nil {
		r.Max = &v
	}
	a.mu.Lock()
	if price {
		a.filters.PriceRange = r
	} else {
		a.filters.MarketCapRange = r
	}
	a.mu.Unlock()
	a.renderList(a.listCtl.Snapshot())
}

// reloadList starts a list fetch for the current page and sort. A stale
// completion from a superseded reload is discarded by the controller.
func (a *app) reloadList() {
	a.mu.Lock()
	page, sort := a.page, a.sort
	a.mu.Unlock()
	a.listCtl.Load(context.Background(), func(ctx context.Context) ([]entity.Coin, error) {
		return a.coins.ListCoins(ctx, page, usecase.DefaultPerPage, sort)
	})
}

// renderList prints the market table for the latest snapshot, narrowed by the
// current search query and ranges.
func (a *app) renderList(snap view.Snapshot[[]entity.Coin]) {
	switch snap.State {
	case view.Loading:
		fmt.Println("loading markets...")
	case view.Failed:
		fmt.Printf("failed to load markets: %v (use 'reload' to retry)\n", snap.Err)
	case view.Ready:
		a.mu.Lock()
		query, filters := a.query, a.filters
		a.mu.Unlock()

		visible := usecase.ApplyFilters(snap.Value, query, filters)
		fmt.Printf("%-5s %-24s %-8s %14s %12s %14s\n", "RANK", "NAME", "SYMBOL", "PRICE", "24H", "MKT CAP")
		for _, c := range visible {
			star := " "
			if a.watchlist.IsWatched(c.ID) {
				star = "*"
			}
			mcap := "-"
			if c.MarketCap != nil {
				mcap = format.Compact(*c.MarketCap)
			}
			fmt.Printf("%-5s %s%-23s %-8s %14s %12s %14s\n",
				format.Rank(c.MarketCapRank), star, c.Name, strings.ToUpper(c.Symbol),
				format.Currency(c.CurrentPrice), format.Percentage(c.PriceChangePct24h), mcap)
		}
		fmt.Printf("%d of %d entries shown\n", len(visible), len(snap.Value))
	}
}

func renderDetail(snap view.Snapshot[*entity.CoinDetail]) {
	switch snap.State {
	case view.Loading:
		fmt.Println("loading detail...")
	case view.Failed:
		fmt.Printf("failed to load detail: %v\n", snap.Err)
	case view.Ready:
		d := snap.Value
		fmt.Printf("%s (%s) %s\n", d.Name, strings.ToUpper(d.Symbol), format.Rank(d.MarketCapRank))
		fmt.Printf("  price %s  24h %s\n", format.Currency(d.CurrentPrice), format.Percentage(d.PriceChangePct24h))
		if d.MarketCap != nil {
			fmt.Printf("  market cap %s  volume %s\n", format.Compact(*d.MarketCap), format.Compact(d.TotalVolume))
		}
		for _, u := range d.Homepage {
			fmt.Println("  " + u)
		}
	}
}

func renderChart(snap view.Snapshot[[]entity.ChartPoint]) {
	switch snap.State {
	case view.Loading:
		fmt.Println("loading chart...")
	case view.Failed:
		fmt.Printf("failed to load chart: %v\n", snap.Err)
	case view.Ready:
		if len(snap.Value) == 0 {
			fmt.Println("no chart data")
			return
		}
		first, last := snap.Value[0], snap.Value[len(snap.Value)-1]
		fmt.Printf("%d points, %s -> %s\n", len(snap.Value),
			first.Time.Format("01-02 15:04"), last.Time.Format("01-02 15:04"))
		fmt.Printf("  open %s  close %s\n",
			format.Currency(&first.Price), format.Currency(&last.Price))
	}
}

func printHelp() {
	fmt.Println(`commands:
  list | reload                    fetch the current market page
  page <n>                         switch page
  sort <key> <asc|desc>            key: market_cap price volume price_change_24h
  search <text>                    filter by name/symbol (debounced)
  price <min|-> <max|->            price range filter
  cap <min|-> <max|->              market cap range filter
  coin <id>                        asset detail
  chart <id> <1|7|30|90>           price chart summary
  watch <id>                       toggle watchlist membership
  watchlist | clear                show or empty the watchlist
  quit`)
}
