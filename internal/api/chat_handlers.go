package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/echoes-hidden/internal/dialogue"
	"github.com/annel0/echoes-hidden/internal/game"
)

// fallbackReply возвращается при сбое генератора
const fallbackReply = "I can't think straight right now. Come back later."

// ChatRequest содержит реплику игрока
type ChatRequest struct {
	NPCID       string         `json:"npcId"`
	NPCContext  map[string]any `json:"npcContext"`
	PlayerInput *string        `json:"playerInput"`
}

// handleChat передаёт очищенную реплику генератору ответов.
// Предложенная миссия сразу становится активной.
func (rs *RestServer) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Неверный формат запроса: "+err.Error())
		return
	}

	if req.PlayerInput == nil {
		abortWithError(c, http.StatusBadRequest, "playerInput is required and must be a string.")
		return
	}
	if req.NPCContext == nil && req.NPCID == "" {
		abortWithError(c, http.StatusBadRequest, "npcContext is required and must be an object.")
		return
	}

	input := dialogue.Sanitize(*req.PlayerInput, dialogue.MaxInputLength)
	if input == "" {
		abortWithError(c, http.StatusBadRequest, "playerInput cannot be empty after sanitization.")
		return
	}

	npcCtx := dialogue.SanitizeContext(req.NPCContext)
	dreq := dialogue.Request{
		NPCID:   req.NPCID,
		Input:   input,
		Context: npcCtx,
	}
	if name, ok := npcCtx["name"].(string); ok {
		dreq.Name = name
	}
	role, _ := npcCtx["role"].(string)
	dreq.Role = dialogue.ParseRole(role)

	// Известный NPC уровня важнее контекста клиента
	if req.NPCID != "" {
		rs.game.WithSimulation(func(sim *game.Simulation) {
			if npc, ok := sim.Layout().FindNPC(req.NPCID); ok {
				dreq.Name = npc.Name
				dreq.Role = dialogue.ParseRole(npc.Role)
			}
		})
	}

	reply, err := rs.responder.Respond(c.Request.Context(), dreq)
	if err != nil {
		rs.logger.Warn("⚠️ Ошибка генератора ответов %s: %v", rs.responder.Name(), err)
		c.JSON(http.StatusOK, dialogue.Reply{Text: fallbackReply})
		return
	}

	if reply.Mission != nil {
		offered := *reply.Mission
		rs.game.WithSimulation(func(sim *game.Simulation) {
			sim.ActivateMission(offered)
		})
		rs.logger.Info("📜 Миссия принята: %s (%s)", offered.Title, offered.ID)
	}

	c.JSON(http.StatusOK, reply)
}
