package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"resplan/internal/database"
	"resplan/internal/models"

	"github.com/gin-gonic/gin"
)

//
// ПРОЕКТЫ
//

func ListProjects(c *gin.Context) {
	dbq := database.DB.Order("created_at desc")

	if status := c.Query("status"); status != "" {
		dbq = dbq.Where("status = ?", status)
	}

	var projects []models.Project
	if err := dbq.Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load projects"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

type projectRequest struct {
	Name        string `json:"name"`
	ClientName  string `json:"clientName"`
	Status      string `json:"status"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"` // "2006-01-02"
	EndDate     string `json:"endDate"`
}

func validProjectStatus(s models.ProjectStatus) bool {
	switch s {
	case models.ProjectPlanned,
		models.ProjectActive,
		models.ProjectOnHold,
		models.ProjectFinished,
		models.ProjectCancelled:
		return true
	}
	return false
}

func parseDate(raw string) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func CreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project name too short"})
		return
	}

	status := models.ProjectPlanned
	if req.Status != "" {
		status = models.ProjectStatus(req.Status)
		if !validProjectStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project status"})
			return
		}
	}

	start, ok := parseDate(req.StartDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date"})
		return
	}
	end, ok := parseDate(req.EndDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date"})
		return
	}

	project := models.Project{
		Name:        req.Name,
		ClientName:  strings.TrimSpace(req.ClientName),
		Status:      status,
		Description: strings.TrimSpace(req.Description),
		StartDate:   start,
		EndDate:     end,
		OwnerID:     currentUserID(c),
	}

	if err := database.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	if uid := currentUserID(c); uid != 0 {
		database.CreateAuditLog(uid, "project", project.ID, "create", "Создан проект: "+project.Name)
	}

	c.JSON(http.StatusCreated, gin.H{"project": project})
}

func UpdateProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		if len(name) < 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project name too short"})
			return
		}
		project.Name = name
	}
	if req.ClientName != "" {
		project.ClientName = strings.TrimSpace(req.ClientName)
	}
	if req.Description != "" {
		project.Description = strings.TrimSpace(req.Description)
	}
	if req.Status != "" {
		status := models.ProjectStatus(req.Status)
		if !validProjectStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project status"})
			return
		}
		project.Status = status
	}

	if req.StartDate != "" {
		start, ok := parseDate(req.StartDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date"})
			return
		}
		project.StartDate = start
	}
	if req.EndDate != "" {
		end, ok := parseDate(req.EndDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date"})
			return
		}
		project.EndDate = end
	}

	if err := database.DB.Save(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update project"})
		return
	}

	if uid := currentUserID(c); uid != 0 {
		database.CreateAuditLog(uid, "project", project.ID, "update", "Проект обновлён: "+project.Name)
	}

	c.JSON(http.StatusOK, gin.H{"project": project})
}

func DeleteProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var project models.Project
	if err := database.DB.First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	if err := database.DB.Delete(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete project"})
		return
	}

	if uid := currentUserID(c); uid != 0 {
		database.CreateAuditLog(uid, "project", project.ID, "delete", "Удалён проект: "+project.Name)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
