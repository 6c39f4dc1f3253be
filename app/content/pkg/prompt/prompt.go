// Package prompt 保存各内容类别的固定提示词
package prompt

import (
	"fmt"

	"github.com/iWorld-y/overcomer/app/content/pkg/model"
)

// SystemInstruction 固定的系统消息
const SystemInstruction = "You are a helpful assistant for a sickle cell disease support community. " +
	"Always respond with valid JSON only."

var templates = map[model.Category]string{
	model.CategoryNews: `Generate 5 recent news items about sickle cell disease: research breakthroughs, new treatments, patient advocacy and community events.
Return a JSON array where each item has the fields:
- "id": a unique number
- "title": a short headline
- "source": the publication or organisation
- "time": when it was published, relative (for example "2h ago")
- "image": an https image URL, or an empty string
- "content": 2-3 sentences summarising the story`,

	model.CategoryQuiz: `Generate 5 multiple-choice quiz questions that help patients and caregivers learn about sickle cell disease, crisis prevention and daily self-care.
Return a JSON array where each item has the fields:
- "question": the question text
- "options": an array of 4 answer strings
- "answer": the correct answer, copied exactly from "options"
- "explanation": one sentence explaining the correct answer`,

	model.CategoryEducation: `Generate 5 short educational cards about living well with sickle cell disease: hydration, pain management, nutrition, warning signs and mental health.
Return a JSON array where each item has the fields:
- "title": a short title
- "content": 2-4 plain-language sentences
- "icon": a single emoji that illustrates the topic`,
}

// Template 返回类别对应的固定提示词
func Template(category model.Category) (string, error) {
	t, ok := templates[category]
	if !ok {
		return "", fmt.Errorf("no prompt template for category %q", category)
	}
	return t, nil
}

// Build 组装用户提示词，context 非空时原样追加一次
func Build(category model.Category, context string) (string, error) {
	t, err := Template(category)
	if err != nil {
		return "", err
	}
	if context == "" {
		return t, nil
	}
	return t + "\n\n" + context, nil
}
