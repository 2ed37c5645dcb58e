package domain

import (
	"slices"
	"time"
)

// MinMaxPlayers минимально допустимая вместимость матча
const MinMaxPlayers = 4

// DefaultRotationIntervalMinutes интервал смены вратаря по умолчанию
const DefaultRotationIntervalMinutes = 15

// TeamKey идентифицирует одну из двух команд матча
type TeamKey string

// Ключи команд
const (
	Team1 TeamKey = "team1"
	Team2 TeamKey = "team2"
)

// TeamKeys перечисляет команды в порядке обхода
var TeamKeys = []TeamKey{Team1, Team2}

// RotationState хранит состояние ротации вратаря для одной команды.
// Форма JSON является частью контракта хранилища.
type RotationState struct {
	Active                  bool       `json:"active"`
	RotationIntervalMinutes int        `json:"rotationIntervalMinutes"`
	LastRotatedAt           *time.Time `json:"lastRotatedAt,omitempty"`
	Current                 *string    `json:"current,omitempty"`
	Order                   []string   `json:"order"`
	Index                   int        `json:"index"`
}

// Interval возвращает интервал ротации, подставляя значение по умолчанию для некорректных данных
func (s *RotationState) Interval() time.Duration {
	minutes := s.RotationIntervalMinutes
	if minutes <= 0 {
		minutes = DefaultRotationIntervalMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// CurrentID возвращает текущего вратаря или пустую строку
func (s *RotationState) CurrentID() string {
	if s.Current == nil {
		return ""
	}
	return *s.Current
}

// Clone возвращает глубокую копию состояния
func (s *RotationState) Clone() RotationState {
	c := *s
	c.Order = slices.Clone(s.Order)
	if s.LastRotatedAt != nil {
		t := *s.LastRotatedAt
		c.LastRotatedAt = &t
	}
	if s.Current != nil {
		id := *s.Current
		c.Current = &id
	}
	return c
}

// GKRotation хранит состояние ротации вратарей обеих команд
type GKRotation struct {
	Team1 RotationState `json:"team1"`
	Team2 RotationState `json:"team2"`
}

// For возвращает состояние ротации указанной команды
func (g *GKRotation) For(team TeamKey) *RotationState {
	if team == Team2 {
		return &g.Team2
	}
	return &g.Team1
}

// Match представляет матч с составом, командами и ротацией вратарей
type Match struct {
	MatchID        string     `json:"id"`
	OrganizerID    string     `json:"organizer"`
	FieldName      string     `json:"fieldName"`
	CityName       string     `json:"cityName"`
	StartDateTime  time.Time  `json:"startDateTime"`
	MaxPlayers     int        `json:"maxPlayers"`
	CleatsAllowed  bool       `json:"cleatsAllowed"`
	TacklesAllowed bool       `json:"tacklesAllowed"`
	Players        []string   `json:"players"`
	Team1          []string   `json:"team1"`
	Team2          []string   `json:"team2"`
	GKRotation     GKRotation `json:"gkRotation"`
	Version        int        `json:"version"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsOrganizer проверяет, является ли пользователь организатором матча
func (m *Match) IsOrganizer(userID string) bool {
	return m.OrganizerID == userID
}

// HasPlayer проверяет, записан ли игрок на матч
func (m *Match) HasPlayer(userID string) bool {
	return slices.Contains(m.Players, userID)
}

// IsFull возвращает true если достигнута вместимость матча
func (m *Match) IsFull() bool {
	return len(m.Players) >= m.MaxPlayers
}

// TeamCapacity возвращает максимальный размер одной команды: ceil(maxPlayers/2)
func (m *Match) TeamCapacity() int {
	return (m.MaxPlayers + 1) / 2
}

// HasTeams возвращает true если команды уже сформированы
func (m *Match) HasTeams() bool {
	return len(m.Team1) > 0 || len(m.Team2) > 0
}

// Team возвращает состав указанной команды
func (m *Match) Team(team TeamKey) []string {
	if team == Team2 {
		return m.Team2
	}
	return m.Team1
}

// RemovePlayer убирает игрока из состава и из обеих команд
func (m *Match) RemovePlayer(userID string) {
	m.Players = slices.DeleteFunc(m.Players, func(id string) bool { return id == userID })
	m.Team1 = slices.DeleteFunc(m.Team1, func(id string) bool { return id == userID })
	m.Team2 = slices.DeleteFunc(m.Team2, func(id string) bool { return id == userID })
}

// Clone возвращает глубокую копию матча
func (m *Match) Clone() *Match {
	c := *m
	c.Players = slices.Clone(m.Players)
	c.Team1 = slices.Clone(m.Team1)
	c.Team2 = slices.Clone(m.Team2)
	c.GKRotation = GKRotation{
		Team1: m.GKRotation.Team1.Clone(),
		Team2: m.GKRotation.Team2.Clone(),
	}
	return &c
}

// MatchFilter задает условие поиска матчей (пустые поля игнорируются)
type MatchFilter struct {
	City     string
	PlayerID string
}

// TeamFormation представляет результат формирования команд
type TeamFormation struct {
	Match              *Match           `json:"match"`
	Team1              []string         `json:"team1"`
	Team2              []string         `json:"team2"`
	RotationNeeded     bool             `json:"rotationNeeded"`
	TeamRotationActive map[TeamKey]bool `json:"teamRotationActive"`
	Messages           []string         `json:"messages"`
}

// MatchDetails представляет матч с разрешенными данными игроков
type MatchDetails struct {
	Match       *Match             `json:"match"`
	Players     []Player           `json:"players"`
	Team1       []Player           `json:"team1"`
	Team2       []Player           `json:"team2"`
	Goalkeepers map[TeamKey]string `json:"goalkeepers"`
}
