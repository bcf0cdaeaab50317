package handlers

import (
	"net/http"

	"resplan/internal/database"
	"resplan/internal/models"

	"github.com/gin-gonic/gin"
)

func ListAuditLogs(c *gin.Context) {
	role := currentRole(c)
	if role != models.RoleAdmin && role != models.RoleViewer {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}

	var logs []models.AuditLog
	database.DB.
		Preload("User").
		Order("created_at desc").
		Limit(200).
		Find(&logs)

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
