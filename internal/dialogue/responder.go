package dialogue

import (
	"context"

	"github.com/google/uuid"

	"github.com/annel0/echoes-hidden/internal/mission"
)

// Request содержит реплику игрока, адресованную NPC
type Request struct {
	NPCID   string
	Name    string
	Role    Role
	Input   string         // Уже очищенная реплика
	Context map[string]any // Дополнительный контекст NPC
}

// Reply содержит ответ NPC
type Reply struct {
	Text    string           `json:"text"`
	Mission *mission.Mission `json:"mission"`
}

// Responder генерирует ответы NPC
type Responder interface {
	Respond(ctx context.Context, req Request) (Reply, error)
	Name() string
}

// MockResponder отвечает по ключевым словам без внешних сервисов
type MockResponder struct {
	// NewID генерирует суффикс идентификатора миссии; по умолчанию UUID
	NewID func() string
}

// NewMockResponder создаёт детерминированный ответчик
func NewMockResponder() *MockResponder {
	return &MockResponder{NewID: uuid.NewString}
}

// Name возвращает название ответчика для /health
func (m *MockResponder) Name() string { return "mock" }

// Respond выбирает ответ по паре роль × категория
func (m *MockResponder) Respond(ctx context.Context, req Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	if req.Input == "" {
		return Reply{Text: "..."}, nil
	}

	switch Classify(req.Input) {
	case CategoryMissionOffer:
		return m.offer(req.Role), nil
	case CategoryGreeting:
		return Reply{Text: greeting(req.Role)}, nil
	default:
		return Reply{Text: dismissal(req.Role)}, nil
	}
}

func (m *MockResponder) offer(role Role) Reply {
	switch role {
	case RoleGuardCaptain:
		return Reply{Text: "Work? The only job here is keeping people like you out."}
	case RoleCivilian:
		return Reply{Text: "I just wash the dishes. Ask someone who sneaks around for a living."}
	case RoleHacker:
		return Reply{
			Text:    "The server room has a terminal nobody watches. Plug this in and walk away.",
			Mission: m.newMission("Splice the Server Room", "Plant the relay on the server room terminal."),
		}
	default:
		return Reply{
			Text:    "Shh. I have a job for you. There's a data drive in the northern warehouse. Retrieve it and I'll make it worth your while.",
			Mission: m.newMission("Retrieve Data Drive", "Get the drive from the North Warehouse."),
		}
	}
}

func (m *MockResponder) newMission(title, description string) *mission.Mission {
	newID := m.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &mission.Mission{
		ID:          "mission_" + newID(),
		Title:       title,
		Description: description,
		Status:      mission.StatusActive,
	}
}

func greeting(role Role) string {
	switch role {
	case RoleGuardCaptain:
		return "State your business. Quickly."
	case RoleCivilian:
		return "Oh! You startled me. Are you new here?"
	case RoleHacker:
		return "You found me. That's either impressive or a problem."
	default:
		return "Keep your voice down. The guards are everywhere today."
	}
}

func dismissal(role Role) string {
	switch role {
	case RoleGuardCaptain:
		return "Move along before I call for backup."
	case RoleCivilian:
		return "Sorry, I'm busy. The cook will shout if I stop."
	case RoleHacker:
		return "Noise. Come back when you have something useful."
	default:
		return "I don't know what you're talking about. Move along."
	}
}
