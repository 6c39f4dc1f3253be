package data

import (
	"context"
	"database/sql"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/overcomer/app/content/pkg/cache"
	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/storage"
	"github.com/iWorld-y/overcomer/app/gateway/internal/conf"
)

// Data 数据库和 Redis 都是可选的
type Data struct {
	db      *sql.DB
	archive *storage.Archive
	cache   *cache.Cache
}

func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)
	ctx := context.Background()
	d := &Data{}

	if c != nil && c.Database != nil && c.Database.Source != "" {
		driver := c.Database.Driver
		if driver == "" {
			driver = "postgres"
		}
		db, err := sql.Open(driver, c.Database.Source)
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		archive, err := storage.NewArchiveWithDB(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		d.db = db
		d.archive = archive
	} else {
		helper.Warn("database is not configured, payloads will not be archived")
	}

	if c != nil && c.Redis != nil && c.Redis.Addr != "" {
		cc, err := cache.New(ctx, config.CacheConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       int(c.Redis.Db),
			TTL:      int(c.Redis.Ttl),
		})
		if err != nil {
			helper.Warnf("redis is unavailable, caching disabled: %v", err)
		} else {
			d.cache = cc
		}
	}

	cleanup := func() {
		helper.Info("closing the data resources")
		if d.cache != nil {
			d.cache.Close()
		}
		if d.db != nil {
			d.db.Close()
		}
	}
	return d, cleanup, nil
}

// Archive 未配置数据库时为 nil
func (d *Data) Archive() *storage.Archive { return d.archive }

// Cache 未配置 Redis 时为 nil
func (d *Data) Cache() *cache.Cache { return d.cache }
