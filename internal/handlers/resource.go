package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"resplan/internal/capacity"
	"resplan/internal/database"
	"resplan/internal/models"

	"github.com/gin-gonic/gin"
)

//
// РЕСУРСЫ
//

func ListResources(c *gin.Context) {
	dbq := database.DB.Order("name asc")

	if c.Query("active") == "true" {
		dbq = dbq.Where("active = ?", true)
	}

	var resources []models.Resource
	if err := dbq.Find(&resources).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resources"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"resources": resources})
}

type resourceRequest struct {
	Name      string `json:"name"`
	RoleTitle string `json:"roleTitle"`
	Email     string `json:"email"`
	// ёмкость с клиента приходит и строкой, и числом
	WeeklyCapacity any   `json:"weeklyCapacity"`
	Active         *bool `json:"active"`
}

func (r *resourceRequest) capacityValue() (float64, bool, error) {
	switch v := r.WeeklyCapacity.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case string:
		parsed, err := capacity.ParseWeeklyCapacity(v)
		return parsed, true, err
	default:
		return 0, true, errInvalidCapacity
	}
}

var errInvalidCapacity = errors.New("weekly capacity must be a number or a numeric string")

func CreateResource(c *gin.Context) {
	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if len(req.Name) < 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource name too short"})
		return
	}

	weekly, set, err := req.capacityValue()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weekly capacity"})
		return
	}
	if !set {
		weekly = 40
	}

	resource := models.Resource{
		Name:           req.Name,
		RoleTitle:      strings.TrimSpace(req.RoleTitle),
		Email:          strings.TrimSpace(req.Email),
		WeeklyCapacity: weekly,
		Active:         true,
	}
	if req.Active != nil {
		resource.Active = *req.Active
	}

	if err := database.DB.Create(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create resource"})
		return
	}

	if uid := currentUserID(c); uid != 0 {
		database.CreateAuditLog(uid, "resource", resource.ID, "create", "Создан ресурс: "+resource.Name)
	}

	c.JSON(http.StatusCreated, gin.H{"resource": resource})
}

func UpdateResource(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	var resource models.Resource
	if err := database.DB.First(&resource, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}

	var req resourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		if len(name) < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "resource name too short"})
			return
		}
		resource.Name = name
	}
	if req.RoleTitle != "" {
		resource.RoleTitle = strings.TrimSpace(req.RoleTitle)
	}
	if req.Email != "" {
		resource.Email = strings.TrimSpace(req.Email)
	}

	weekly, set, err := req.capacityValue()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid weekly capacity"})
		return
	}
	if set {
		resource.WeeklyCapacity = weekly
	}
	if req.Active != nil {
		resource.Active = *req.Active
	}

	if err := database.DB.Save(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update resource"})
		return
	}

	if uid := currentUserID(c); uid != 0 {
		database.CreateAuditLog(uid, "resource", resource.ID, "update", "Ресурс обновлён: "+resource.Name)
	}

	c.JSON(http.StatusOK, gin.H{"resource": resource})
}

func DeleteResource(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resource id"})
		return
	}

	var resource models.Resource
	if err := database.DB.First(&resource, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
		return
	}

	if err := database.DB.Delete(&resource).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete resource"})
		return
	}

	if uid := currentUserID(c); uid != 0 {
		database.CreateAuditLog(uid, "resource", resource.ID, "delete", "Удалён ресурс: "+resource.Name)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
