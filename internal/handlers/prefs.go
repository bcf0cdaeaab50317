package handlers

import (
	"net/http"

	"resplan/internal/database"
	"resplan/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

//
// НАСТРОЙКИ ПОЛЬЗОВАТЕЛЯ (фильтры грида и т.п.)
//

func GetPreference(c *gin.Context) {
	uid := currentUserID(c)
	key := c.Param("key")

	var pref models.Preference
	err := database.DB.
		Where("user_id = ? AND key = ?", uid, key).
		First(&pref).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "preference not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": pref.Key, "value": pref.Value})
}

type putPreferenceRequest struct {
	Value string `json:"value"`
}

func PutPreference(c *gin.Context) {
	uid := currentUserID(c)
	key := c.Param("key")
	if key == "" || len(key) > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid preference key"})
		return
	}

	var req putPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	pref := models.Preference{
		UserID: uid,
		Key:    key,
		Value:  req.Value,
	}

	err := database.DB.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&pref).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save preference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": req.Value})
}
