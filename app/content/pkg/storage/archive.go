package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	_ "github.com/lib/pq"

	"github.com/iWorld-y/overcomer/app/content/pkg/config"
	"github.com/iWorld-y/overcomer/app/content/pkg/model"
)

// ErrNotFound 没有符合条件的归档
var ErrNotFound = errors.New("archived payload not found")

// Record 一条归档记录
type Record struct {
	ID        int64          `json:"id"`
	Category  model.Category `json:"category"`
	Context   string         `json:"context"`
	Model     string         `json:"model"`
	Items     int            `json:"items"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Archive 将成功获取的内容保存到 PostgreSQL
type Archive struct {
	db *sql.DB
}

// DSN 根据配置拼接连接串
func DSN(cfg config.DBConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
}

// NewArchive 连接数据库并初始化表结构
func NewArchive(ctx context.Context, cfg config.DBConfig) (*Archive, error) {
	db, err := sql.Open("postgres", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	a, err := NewArchiveWithDB(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// NewArchiveWithDB 使用已有连接，gateway 与其他数据共用一个连接池
func NewArchiveWithDB(ctx context.Context, db *sql.DB) (*Archive, error) {
	a := &Archive{db: db}
	if err := a.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return a, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS content_payloads (
			id BIGSERIAL PRIMARY KEY,
			category TEXT NOT NULL,
			context TEXT NOT NULL DEFAULT '',
			model TEXT NOT NULL DEFAULT '',
			item_count INTEGER NOT NULL,
			items JSONB NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_content_payloads_category_fetched
			ON content_payloads (category, fetched_at DESC)`,
	}

	for _, query := range queries {
		if _, err := a.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

// Save 保存一次结果，返回记录 id
func (a *Archive) Save(ctx context.Context, p *model.Payload, extra string) (int64, error) {
	items := p.Raw
	if len(items) == 0 {
		data, err := json.Marshal(p.Items())
		if err != nil {
			return 0, err
		}
		items = data
	}

	fetchedAt := p.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	var id int64
	err := a.db.QueryRowContext(ctx, `
		INSERT INTO content_payloads (category, context, model, item_count, items, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		string(p.Category), sanitize(extra), p.Model, p.Len(), []byte(sanitize(string(items))), fetchedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert content payload: %w", err)
	}
	return id, nil
}

// Latest 返回某类别最近一次归档的内容
func (a *Archive) Latest(ctx context.Context, category model.Category) (*model.Payload, error) {
	var (
		modelName string
		items     []byte
		fetchedAt time.Time
	)
	err := a.db.QueryRowContext(ctx, `
		SELECT model, items, fetched_at FROM content_payloads
		WHERE category = $1
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1`, string(category)).Scan(&modelName, &items, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest payload: %w", err)
	}

	p, err := model.Decode(category, items)
	if err != nil {
		return nil, fmt.Errorf("archived payload is invalid: %w", err)
	}
	p.Model = modelName
	p.FetchedAt = fetchedAt
	return p, nil
}

// List 按时间倒序列出归档记录
func (a *Archive) List(ctx context.Context, category model.Category, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, category, context, model, item_count, fetched_at FROM content_payloads
		WHERE category = $1
		ORDER BY fetched_at DESC, id DESC
		LIMIT $2`, string(category), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list payloads: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var c string
		if err := rows.Scan(&r.ID, &c, &r.Context, &r.Model, &r.Items, &r.FetchedAt); err != nil {
			return nil, err
		}
		r.Category = model.Category(c)
		records = append(records, r)
	}
	return records, rows.Err()
}

// sanitize 移除无效的 UTF-8 字符和 NULL 字节，PostgreSQL 文本字段不支持
func sanitize(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	return strings.ReplaceAll(s, "\x00", "")
}
