// Package dialogue отвечает на реплики игрока от имени NPC.
package dialogue

import "strings"

// Role задаёт роль NPC в комплексе
type Role uint8

const (
	RoleCitizen Role = iota // Роль по умолчанию
	RoleInformant
	RoleCivilian
	RoleHacker
	RoleGuardCaptain
)

// String возвращает отображаемое имя роли
func (r Role) String() string {
	switch r {
	case RoleInformant:
		return "Informant"
	case RoleCivilian:
		return "Civilian"
	case RoleHacker:
		return "Hacker"
	case RoleGuardCaptain:
		return "Guard Captain"
	default:
		return "Citizen"
	}
}

// ParseRole разбирает роль из строки. Неизвестные роли считаются Citizen.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "informant":
		return RoleInformant
	case "civilian":
		return RoleCivilian
	case "hacker":
		return RoleHacker
	case "guard captain", "guard_captain", "guardcaptain":
		return RoleGuardCaptain
	default:
		return RoleCitizen
	}
}

// Category описывает намерение реплики игрока
type Category uint8

const (
	CategoryDismissal    Category = iota // Всё, что не распознано
	CategoryGreeting                     // Приветствие
	CategoryMissionOffer                 // Просьба о работе
)

// String возвращает строковое представление категории
func (c Category) String() string {
	switch c {
	case CategoryGreeting:
		return "greeting"
	case CategoryMissionOffer:
		return "mission_offer"
	default:
		return "dismissal"
	}
}

// Classify определяет категорию реплики по ключевым словам.
// Поиск подстрочный: "hi" срабатывает и внутри других слов.
func Classify(input string) Category {
	lower := strings.ToLower(input)
	switch {
	case strings.Contains(lower, "mission"), strings.Contains(lower, "job"):
		return CategoryMissionOffer
	case strings.Contains(lower, "hello"), strings.Contains(lower, "hi"):
		return CategoryGreeting
	default:
		return CategoryDismissal
	}
}
