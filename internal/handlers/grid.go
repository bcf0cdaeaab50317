package handlers

import (
	"errors"
	"net/http"

	"resplan/internal/capacity"
	"resplan/internal/database"
	"resplan/internal/grid"
	"resplan/internal/models"

	"github.com/gin-gonic/gin"
)

//
// СЕССИИ РЕДАКТИРОВАНИЯ ГРИДА
//

type openSessionRequest struct {
	Mode string `json:"mode"` // "autosave" | "batch"
}

func OpenGridSession(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	mode := grid.Mode(req.Mode)
	if mode != grid.ModeAutosave && mode != grid.ModeBatch {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be autosave or batch"})
		return
	}

	s := gridManager.Open(currentUserID(c), mode)
	c.JSON(http.StatusCreated, gin.H{"sessionId": s.ID, "mode": s.Mode})
}

func getSession(c *gin.Context) (*grid.Session, bool) {
	s, err := gridManager.Get(c.Param("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, grid.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "grid session not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load grid session"})
		}
		return nil, false
	}
	return s, true
}

type editCellRequest struct {
	ResourceID uint     `json:"resourceId"`
	ProjectID  uint     `json:"projectId"`
	WeekKey    string   `json:"weekKey"`
	Hours      float64  `json:"hours"`
	OldValue   *float64 `json:"oldValue"`
}

// EditGridCell принимает одну правку ячейки. Сохранение — забота политики
// сессии; здесь же считается только информационное предупреждение о
// перегрузке, правку оно не блокирует никогда.
func EditGridCell(c *gin.Context) {
	s, ok := getSession(c)
	if !ok {
		return
	}

	var req editCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if !capacity.ValidWeekKey(req.WeekKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week key"})
		return
	}
	if req.Hours < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must not be negative"})
		return
	}
	if req.ResourceID == 0 || req.ProjectID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource and project are required"})
		return
	}

	var resource models.Resource
	if err := database.DB.First(&resource, req.ResourceID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}

	var project models.Project
	if err := database.DB.First(&project, req.ProjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	// старый вклад ячейки: из правки, иначе из хранилища
	currentHours := 0.0
	if req.OldValue != nil {
		currentHours = *req.OldValue
	} else {
		var existing models.Allocation
		err := database.DB.
			Where("resource_id = ? AND project_id = ? AND week_key = ?",
				req.ResourceID, req.ProjectID, req.WeekKey).
			First(&existing).Error
		if err == nil {
			currentHours = existing.Hours
		}
	}

	warning := calc.CheckOverallocation(
		req.ResourceID, resource.WeeklyCapacity, req.WeekKey, req.Hours, currentHours)

	change := grid.PendingChange{
		ResourceID: req.ResourceID,
		ProjectID:  req.ProjectID,
		WeekKey:    req.WeekKey,
		Hours:      req.Hours,
	}
	if req.OldValue != nil {
		change.OldValue = *req.OldValue
		change.HasOldValue = true
	}

	stored := s.Edit(change)

	c.JSON(http.StatusOK, gin.H{
		"cellKey": stored.CellKey,
		"state":   s.Store.State(stored.CellKey),
		"warning": warning,
	})
}

type flushCellRequest struct {
	Extra map[string]any `json:"extra"`
}

// FlushGridCell — немедленный сброс ячейки (blur), минуя таймер.
func FlushGridCell(c *gin.Context) {
	s, ok := getSession(c)
	if !ok {
		return
	}
	if s.Mode != grid.ModeAutosave {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flush is only available in autosave mode"})
		return
	}

	var req flushCellRequest
	_ = c.ShouldBindJSON(&req) // тело опционально

	cellKey := c.Param("cellKey")
	if err := s.Auto.SaveImmediately(c.Request.Context(), cellKey, req.Extra); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "save failed",
			"state": s.Store.State(cellKey),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"state": s.Store.State(cellKey)})
}

func sessionStateBody(s *grid.Session) gin.H {
	cells := gin.H{}
	for _, key := range s.Store.Keys() {
		cells[key] = s.Store.State(key)
	}
	// failed-ячейки видны и после того, как из pending их уже убрали бы
	for _, key := range s.Store.FailedKeys() {
		cells[key] = s.Store.State(key)
	}
	return gin.H{
		"hasUnsavedChanges": s.Store.HasUnsavedChanges(),
		"pendingCount":      s.Store.Len(),
		"failedCells":       s.Store.FailedKeys(),
		"cells":             cells,
	}
}

func GridSessionState(c *gin.Context) {
	s, ok := getSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionStateBody(s))
}

// SaveGridSession — явное пакетное сохранение: все правки, строго
// последовательно, первый сбой обрывает остаток.
func SaveGridSession(c *gin.Context) {
	s, ok := getSession(c)
	if !ok {
		return
	}

	if err := s.Batch.SaveAll(c.Request.Context()); err != nil {
		body := sessionStateBody(s)
		body["error"] = err.Error()
		c.JSON(http.StatusBadGateway, body)
		return
	}

	c.JSON(http.StatusOK, sessionStateBody(s))
}

type cellKeysRequest struct {
	CellKeys []string `json:"cellKeys"`
}

func SaveSelectedGridCells(c *gin.Context) {
	s, ok := getSession(c)
	if !ok {
		return
	}

	var req cellKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.CellKeys) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cellKeys is required"})
		return
	}

	if err := s.Batch.SaveSpecific(c.Request.Context(), req.CellKeys); err != nil {
		body := sessionStateBody(s)
		body["error"] = err.Error()
		c.JSON(http.StatusBadGateway, body)
		return
	}

	c.JSON(http.StatusOK, sessionStateBody(s))
}

func RetryGridSession(c *gin.Context) {
	s, ok := getSession(c)
	if !ok {
		return
	}

	if err := s.Batch.RetryFailed(c.Request.Context()); err != nil {
		body := sessionStateBody(s)
		body["error"] = err.Error()
		c.JSON(http.StatusBadGateway, body)
		return
	}

	c.JSON(http.StatusOK, sessionStateBody(s))
}

// DiscardGridSession сбрасывает правки без сети: все или выбранные.
func DiscardGridSession(c *gin.Context) {
	s, ok := getSession(c)
	if !ok {
		return
	}

	var req cellKeysRequest
	_ = c.ShouldBindJSON(&req) // тело опционально

	if len(req.CellKeys) > 0 {
		s.Batch.DiscardSpecific(req.CellKeys)
	} else {
		s.Batch.DiscardAll()
	}

	c.JSON(http.StatusOK, sessionStateBody(s))
}

type closeSessionRequest struct {
	Decision string `json:"decision"` // "save" | "discard" | "cancel"
}

// CloseGridSession — развязка navigation guard: уйти можно после
// успешного сохранения или явного discard; cancel оставляет всё как есть.
func CloseGridSession(c *gin.Context) {
	var req closeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	proceeded, err := gridManager.Close(
		c.Request.Context(), c.Param("id"), currentUserID(c), grid.Decision(req.Decision))
	if err != nil {
		if errors.Is(err, grid.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "grid session not found"})
			return
		}
		c.JSON(http.StatusConflict, gin.H{"proceeded": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"proceeded": proceeded})
}
