package db

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	watchlistadapters "crypto_dashboard/internal/feature/watchlist/adapters"
)

// DefaultSQLitePath はSQLiteファイルのデフォルトパスです。
const DefaultSQLitePath = "crypto_dashboard.db"

// Opener はDSNからgorm.DBを開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// SQLitePath はローカル保存用SQLiteファイルのパスを返します。
// WATCHLIST_DB_PATHが設定されていればそれを使います。
func SQLitePath() string {
	if p := os.Getenv("WATCHLIST_DB_PATH"); p != "" {
		return p
	}
	return DefaultSQLitePath
}

// ConnectWithRetry はタイムアウトまで3秒間隔で接続をリトライします。
// コンテナ起動順の揺らぎでDBがまだ受け付けていないケースに備えます。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, err
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}
}

// OpenDB はウォッチリスト永続化用のデータベースを開きます。
//
// DATABASE_URLが設定されていればPostgresへ接続し、未設定なら
// ローカル単一デバイス運用としてSQLiteファイルを使います。
func OpenDB() *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err = ConnectWithRetry(dsn, 60*time.Second, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), &gorm.Config{})
		})
		if err != nil {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
	} else {
		path := SQLitePath()
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open sqlite db %q: %v", path, err)
		}
	}

	if os.Getenv("RUN_MIGRATIONS") != "false" {
		// マイグレーション（KVエントリのみ）
		if err := db.AutoMigrate(&watchlistadapters.KVEntry{}); err != nil {
			log.Fatalf("failed to migrate: %v", err)
		}
	}

	return db
}
