package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/echoes-hidden/internal/game"
	"github.com/annel0/echoes-hidden/internal/storage"
)

// maxSaveSize ограничивает размер импортируемого сохранения
const maxSaveSize = 1 << 20

// slotFromQuery возвращает слот из ?slot= или слот по умолчанию
func (rs *RestServer) slotFromQuery(c *gin.Context) (string, bool) {
	slot := c.DefaultQuery("slot", rs.slot)
	if err := storage.ValidateSlot(slot); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return "", false
	}
	return slot, true
}

// handleSave сериализует состояние и записывает его в слот
func (rs *RestServer) handleSave(c *gin.Context) {
	slot, ok := rs.slotFromQuery(c)
	if !ok {
		return
	}

	var (
		data []byte
		err  error
	)
	rs.game.WithSimulation(func(sim *game.Simulation) {
		data, err = sim.MarshalSave()
	})
	if err != nil {
		rs.logger.Error("❌ Ошибка сериализации сохранения: %v", err)
		abortWithError(c, http.StatusInternalServerError, "Ошибка сериализации сохранения")
		return
	}

	if err := rs.store.Save(c.Request.Context(), slot, data); err != nil {
		rs.logger.Error("❌ Ошибка записи слота %s: %v", slot, err)
		abortWithError(c, http.StatusInternalServerError, "Ошибка записи сохранения")
		return
	}

	rs.logger.Info("💾 Игра сохранена в слот %s (%d байт)", slot, len(data))
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Игра сохранена",
		Data:    gin.H{"slot": slot, "bytes": len(data)},
	})
}

// handleLoad читает слот и применяет сохранение поверх текущего состояния
func (rs *RestServer) handleLoad(c *gin.Context) {
	slot, ok := rs.slotFromQuery(c)
	if !ok {
		return
	}

	data, err := rs.store.Load(c.Request.Context(), slot)
	if errors.Is(err, storage.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "Сохранение не найдено")
		return
	}
	if err != nil {
		rs.logger.Error("❌ Ошибка чтения слота %s: %v", slot, err)
		abortWithError(c, http.StatusInternalServerError, "Ошибка чтения сохранения")
		return
	}

	rs.importSave(c, data)
}

// handleDeleteSave очищает слот
func (rs *RestServer) handleDeleteSave(c *gin.Context) {
	slot, ok := rs.slotFromQuery(c)
	if !ok {
		return
	}

	err := rs.store.Delete(c.Request.Context(), slot)
	if errors.Is(err, storage.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, "Сохранение не найдено")
		return
	}
	if err != nil {
		rs.logger.Error("❌ Ошибка удаления слота %s: %v", slot, err)
		abortWithError(c, http.StatusInternalServerError, "Ошибка удаления сохранения")
		return
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Сохранение удалено"})
}

// handleExport отдаёт сохранение без записи в хранилище
func (rs *RestServer) handleExport(c *gin.Context) {
	var st game.SaveState
	rs.game.WithSimulation(func(sim *game.Simulation) {
		st = sim.Export()
	})
	c.JSON(http.StatusOK, st)
}

// handleImport применяет сохранение из тела запроса
func (rs *RestServer) handleImport(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSaveSize+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Не удалось прочитать тело запроса")
		return
	}
	if len(data) > maxSaveSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Сохранение слишком большое")
		return
	}

	rs.importSave(c, data)
}

func (rs *RestServer) importSave(c *gin.Context, data []byte) {
	var err error
	rs.game.WithSimulation(func(sim *game.Simulation) {
		err = sim.Import(data)
	})
	if err != nil {
		if errors.Is(err, game.ErrInvalidSave) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Ошибка применения сохранения")
		return
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Игра загружена", Data: rs.game.Snapshot()})
}
