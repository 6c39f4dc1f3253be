package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iWorld-y/overcomer/app/content/pkg/cache"
	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/engine"
	"github.com/iWorld-y/overcomer/app/content/pkg/logger"
	dm "github.com/iWorld-y/overcomer/app/content/pkg/model"
	"github.com/iWorld-y/overcomer/app/content/pkg/storage"
)

var (
	confPath = flag.String("conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
	category = flag.String("category", "news", "content category: news, quiz or education")
	extra    = flag.String("context", "", "free-text context appended to the prompt")
	query    = flag.String("query", "", "send a raw query and print the unprocessed response")
	trial    = flag.String("trials", "", "search recruiting clinical trials for a condition")
	pageSize = flag.Int("page-size", 10, "number of trials to return")
)

func main() {
	flag.Parse()

	// 1. 加载配置，配置文件不存在时只使用默认值和环境变量
	path := *confPath
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = ""
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 可选的缓存和归档
	var opts []engine.Option
	if cfg.Cache.Addr != "" {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			logger.Log.Warnf("无法连接 Redis: %v. 不使用缓存。", err)
		} else {
			defer c.Close()
			opts = append(opts, engine.WithCache(c))
		}
	}
	if cfg.DB.Host != "" {
		a, err := storage.NewArchive(ctx, cfg.DB)
		if err != nil {
			logger.Log.Errorf("无法连接数据库: %v. 结果不做归档。", err)
		} else {
			defer a.Close()
			opts = append(opts, engine.WithArchive(a))
			logger.Log.Info("已成功连接到数据库")
		}
	}

	e, err := engine.New(cfg, opts...)
	if err != nil {
		logger.Log.Fatalf("引擎初始化失败: %v", err)
	}

	var out any
	switch {
	case *query != "":
		out, err = e.FetchRaw(ctx, *query)
	case *trial != "":
		out, err = e.SearchTrials(ctx, *trial, *pageSize)
	default:
		c, perr := dm.ParseCategory(*category)
		if perr != nil {
			exit(&engine.Error{Kind: engine.KindInvalidCategory, Op: "parse_flags", Err: perr})
		}
		out, err = e.FetchStructured(ctx, c, *extra)
	}
	if err != nil {
		exit(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Log.Fatalf("输出结果失败: %v", err)
	}
}

func exit(err error) {
	kind := engine.KindOf(err)
	if kind == "" {
		kind = "unknown"
	}
	fmt.Fprintf(os.Stderr, "error (%s): %v\n", kind, err)
	os.Exit(1)
}
