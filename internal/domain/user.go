package domain

import (
	"slices"
	"strings"
	"time"
)

// Позиции игрока на поле
const (
	PositionGoalie     = "goalie"
	PositionOutfielder = "outfielder"
)

// Границы уровня мастерства
const (
	MinSkillLevel = 0
	MaxSkillLevel = 4
)

// goalkeeperTags синонимы позиции вратаря после нормализации
var goalkeeperTags = []string{"goalie", "gk", "goalkeeper", "keeper"}

// User представляет зарегистрированного пользователя
type User struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	SkillLevel   int       `json:"skillLevel"`
	Positions    []string  `json:"position"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Player возвращает проекцию пользователя, используемую движком матчей
func (u *User) Player() Player {
	return Player{
		UserID:     u.UserID,
		Name:       u.Name,
		SkillLevel: u.SkillLevel,
		Positions:  u.Positions,
	}
}

// Player представляет игрока с уровнем мастерства и позициями (только для чтения)
type Player struct {
	UserID     string   `json:"id"`
	Name       string   `json:"name"`
	SkillLevel int      `json:"skillLevel"`
	Positions  []string `json:"position"`
}

// IsGoalkeeper возвращает true если среди позиций игрока есть вратарская
func (p Player) IsGoalkeeper() bool {
	for _, tag := range p.Positions {
		if IsGoalkeeperTag(tag) {
			return true
		}
	}
	return false
}

// IsGoalkeeperTag сравнивает тег позиции с синонимами вратаря без учета регистра и пробелов
func IsGoalkeeperTag(tag string) bool {
	return slices.Contains(goalkeeperTags, strings.ToLower(strings.TrimSpace(tag)))
}

// NormalizePositions приводит теги к каноническому виду и убирает дубликаты.
// Возвращает false если встретилась неизвестная позиция.
func NormalizePositions(tags []string) ([]string, bool) {
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		var position string
		switch {
		case IsGoalkeeperTag(tag):
			position = PositionGoalie
		case strings.EqualFold(strings.TrimSpace(tag), PositionOutfielder):
			position = PositionOutfielder
		default:
			return nil, false
		}
		if !slices.Contains(result, position) {
			result = append(result, position)
		}
	}
	return result, true
}
