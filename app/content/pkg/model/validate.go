package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(quizAnswerInOptions, QuizItem{})
	return v
}

func quizAnswerInOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuizItem)
	if q.Answer == "" {
		return
	}
	for _, o := range q.Options {
		if o == q.Answer {
			return
		}
	}
	sl.ReportError(q.Answer, "answer", "Answer", "oneof_options", "")
}

// ErrEmptyPayload 数组中没有任何条目
var ErrEmptyPayload = errors.New("payload contains no items")

// ValidationError 描述第一个不合法的条目
type ValidationError struct {
	Category Category
	Index    int
	Field    string
	Rule     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s item %d: field %q failed %q", e.Category, e.Index, e.Field, e.Rule)
}

// Decode 将提取出的 JSON 数组解码为对应类别的条目并逐条校验
func Decode(category Category, raw json.RawMessage) (*Payload, error) {
	p := &Payload{Category: category, Raw: raw}

	var err error
	switch category {
	case CategoryNews:
		err = decodeItems(raw, &p.News)
	case CategoryQuiz:
		err = decodeItems(raw, &p.Quiz)
	case CategoryEducation:
		err = decodeItems(raw, &p.Education)
	default:
		return nil, fmt.Errorf("unknown content category %q", category)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", category, err)
	}
	if p.Len() == 0 {
		return nil, ErrEmptyPayload
	}

	switch category {
	case CategoryNews:
		err = validateItems(category, p.News)
	case CategoryQuiz:
		err = validateItems(category, p.Quiz)
	case CategoryEducation:
		err = validateItems(category, p.Education)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func decodeItems[T any](raw json.RawMessage, dst *[]T) error {
	return json.Unmarshal(raw, dst)
}

func validateItems[T any](category Category, items []T) error {
	for i, item := range items {
		if err := validate.Struct(item); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				fe := fieldErrs[0]
				return &ValidationError{Category: category, Index: i, Field: fe.Field(), Rule: fe.Tag()}
			}
			return fmt.Errorf("%s item %d: %w", category, i, err)
		}
	}
	return nil
}

// QuizScore 测验得分
type QuizScore struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

// ScoreQuiz 线性计分：每答对一题得一分，未作答视为错误
func ScoreQuiz(items []QuizItem, answers []string) QuizScore {
	score := QuizScore{Total: len(items)}
	for i, item := range items {
		if i >= len(answers) {
			break
		}
		if strings.EqualFold(strings.TrimSpace(answers[i]), strings.TrimSpace(item.Answer)) {
			score.Correct++
		}
	}
	if score.Total > 0 {
		score.Percent = int(math.Round(float64(score.Correct) * 100 / float64(score.Total)))
	}
	return score
}
