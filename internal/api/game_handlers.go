package api

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/echoes-hidden/internal/entity"
	"github.com/annel0/echoes-hidden/internal/game"
	"github.com/annel0/echoes-hidden/internal/mission"
	"github.com/annel0/echoes-hidden/internal/vec"
	"github.com/annel0/echoes-hidden/internal/world"
)

// NPCView описывает NPC в ответах API
type NPCView struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Role     string        `json:"role"`
	Position vec.Vec2Float `json:"position"`
}

func npcView(n world.NPCSpawn) NPCView {
	return NPCView{ID: n.ID, Name: n.Name, Role: n.Role, Position: n.Position}
}

// ReputationRequest задаёт изменение репутации по итогам диалога
type ReputationRequest struct {
	Delta *float64 `json:"delta"`
}

// handleState возвращает снимок состояния
func (rs *RestServer) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, rs.game.Snapshot())
}

// handleInput задаёт намерение движения
func (rs *RestServer) handleInput(c *gin.Context) {
	var in entity.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		abortWithError(c, http.StatusBadRequest, "Неверный формат запроса: "+err.Error())
		return
	}

	rs.game.SetInput(in)
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Ввод принят", Data: in})
}

// handleInteract возвращает NPC в радиусе разговора
func (rs *RestServer) handleInteract(c *gin.Context) {
	var (
		npc world.NPCSpawn
		ok  bool
	)
	rs.game.WithSimulation(func(sim *game.Simulation) {
		npc, ok = sim.Interact()
	})

	if !ok {
		c.JSON(http.StatusOK, gin.H{"npc": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"npc": npcView(npc)})
}

// handleReset выполняет полный сброс забега
func (rs *RestServer) handleReset(c *gin.Context) {
	rs.game.SetInput(entity.Input{})
	rs.game.WithSimulation(func(sim *game.Simulation) {
		sim.Reset()
	})

	rs.logger.Info("🔄 Забег сброшен")
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Игра сброшена", Data: rs.game.Snapshot()})
}

// handleCompleteMission завершает активную миссию
func (rs *RestServer) handleCompleteMission(c *gin.Context) {
	var (
		done mission.Mission
		ok   bool
	)
	rs.game.WithSimulation(func(sim *game.Simulation) {
		done, ok = sim.CompleteMission()
	})

	if !ok {
		abortWithError(c, http.StatusConflict, "Нет активной миссии")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Миссия выполнена", Data: done})
}

// handleReputation изменяет репутацию
func (rs *RestServer) handleReputation(c *gin.Context) {
	var req ReputationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Неверный формат запроса: "+err.Error())
		return
	}
	if req.Delta == nil || math.IsNaN(*req.Delta) || math.IsInf(*req.Delta, 0) {
		abortWithError(c, http.StatusBadRequest, "delta is required and must be a finite number.")
		return
	}

	var reputation float64
	rs.game.WithSimulation(func(sim *game.Simulation) {
		reputation = sim.UpdateReputation(*req.Delta)
	})
	c.JSON(http.StatusOK, gin.H{"reputation": reputation})
}
