package dialogue

import (
	"regexp"
	"strings"
)

const (
	MaxInputLength      = 500  // Максимальная длина реплики игрока, символов
	MaxNPCContextLength = 1000 // Максимальная длина строковых полей контекста NPC
)

var (
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
	controlPattern = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
)

// Sanitize удаляет HTML-теги и управляющие символы, обрезает пробелы
// и ограничивает длину limit символами
func Sanitize(s string, limit int) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = controlPattern.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if limit > 0 {
		runes := []rune(s)
		if len(runes) > limit {
			s = string(runes[:limit])
		}
	}
	return s
}

// SanitizeContext очищает строковые поля контекста NPC.
// Числа и логические значения сохраняются, остальные типы отбрасываются.
func SanitizeContext(ctx map[string]any) map[string]any {
	out := make(map[string]any, len(ctx))
	for k, v := range ctx {
		switch val := v.(type) {
		case string:
			out[k] = Sanitize(val, MaxNPCContextLength)
		case float64, int, bool:
			out[k] = val
		}
	}
	return out
}
