package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"resplan/internal/capacity"
	"resplan/internal/database"
	"resplan/internal/grid"
	"resplan/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// поднимает хендлеры поверх sqlite в памяти вместо живого postgres
func setupGridRouter(t *testing.T) (*gin.Engine, *grid.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Resource{}, &models.Project{}, &models.Allocation{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	database.DB = db

	manager := grid.NewManager(grid.ManagerConfig{
		Mutate: func(ctx context.Context, vars grid.MutationVariables) error { return nil },
	})
	t.Cleanup(manager.Shutdown)

	Init(manager, capacity.NewCalculator(func(resourceID uint, weekKey string) float64 {
		return 0
	}))

	r := gin.New()
	r.Use(sessions.Sessions("resplan_session", cookie.NewStore([]byte("test-secret"))))
	r.POST("/api/grid/sessions/:id/cells", EditGridCell)
	return r, manager
}

func postCell(t *testing.T, r *gin.Engine, sessionID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/grid/sessions/%s/cells", sessionID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// Правка с несуществующим проектом должна отклоняться сразу,
// так же как и с несуществующим ресурсом.
func TestEditGridCellUnknownProject(t *testing.T) {
	r, manager := setupGridRouter(t)

	res := models.Resource{Name: "Dev", WeeklyCapacity: 40, Active: true}
	if err := database.DB.Create(&res).Error; err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}

	s := manager.Open(0, grid.ModeBatch)

	w := postCell(t, r, s.ID, gin.H{
		"resourceId": res.ID,
		"projectId":  999,
		"weekKey":    "2025-W07",
		"hours":      10,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown project, got %d: %s", w.Code, w.Body.String())
	}
	if s.Store.HasUnsavedChanges() {
		t.Error("rejected edit must not land in the pending map")
	}
}

func TestEditGridCellKnownProject(t *testing.T) {
	r, manager := setupGridRouter(t)

	res := models.Resource{Name: "Dev", WeeklyCapacity: 40, Active: true}
	if err := database.DB.Create(&res).Error; err != nil {
		t.Fatalf("failed to create resource: %v", err)
	}
	proj := models.Project{Name: "CRM", Status: models.ProjectActive}
	if err := database.DB.Create(&proj).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	s := manager.Open(0, grid.ModeBatch)

	w := postCell(t, r, s.ID, gin.H{
		"resourceId": res.ID,
		"projectId":  proj.ID,
		"weekKey":    "2025-W07",
		"hours":      10,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if s.Store.Len() != 1 {
		t.Errorf("expected one pending cell, got %d", s.Store.Len())
	}
}
