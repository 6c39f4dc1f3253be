package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Category 内容类别
type Category string

const (
	CategoryNews      Category = "news"
	CategoryQuiz      Category = "quiz"
	CategoryEducation Category = "education"
)

// Categories 返回全部内容类别，顺序固定
func Categories() []Category {
	return []Category{CategoryNews, CategoryQuiz, CategoryEducation}
}

// ParseCategory 解析内容类别，忽略大小写和首尾空白
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown content category %q, want one of %v", s, Categories())
	}
	return c, nil
}

// Valid 判断类别是否受支持
func (c Category) Valid() bool {
	return slices.Contains(Categories(), c)
}

func (c Category) String() string { return string(c) }

// ItemID 兼容 LLM 返回的数字或字符串 id
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// NewsItem 资讯条目
type NewsItem struct {
	ID      ItemID `json:"id"`
	Title   string `json:"title" validate:"required"`
	Source  string `json:"source"`
	Time    string `json:"time"`
	Image   string `json:"image"`
	Content string `json:"content"`
}

// QuizItem 测验题目，Answer 必须是 Options 之一
type QuizItem struct {
	Question    string   `json:"question" validate:"required"`
	Options     []string `json:"options" validate:"min=2,dive,required"`
	Answer      string   `json:"answer" validate:"required"`
	Explanation string   `json:"explanation"`
}

// EducationItem 科普卡片
type EducationItem struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
	Icon    string `json:"icon"`
}

// Payload 一次结构化内容请求的结果
type Payload struct {
	Category  Category        `json:"category"`
	News      []NewsItem      `json:"news,omitempty"`
	Quiz      []QuizItem      `json:"quiz,omitempty"`
	Education []EducationItem `json:"education,omitempty"`
	Model     string          `json:"model,omitempty"`
	FetchedAt time.Time       `json:"fetched_at"`

	// Raw 是提取出的原始 JSON 数组
	Raw json.RawMessage `json:"-"`
}

// Len 返回条目数量
func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	switch p.Category {
	case CategoryNews:
		return len(p.News)
	case CategoryQuiz:
		return len(p.Quiz)
	case CategoryEducation:
		return len(p.Education)
	}
	return 0
}

// Items 返回与类别对应的条目切片
func (p *Payload) Items() any {
	switch p.Category {
	case CategoryNews:
		return p.News
	case CategoryQuiz:
		return p.Quiz
	case CategoryEducation:
		return p.Education
	}
	return nil
}
