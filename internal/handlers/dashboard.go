package handlers

import (
	"net/http"
	"time"

	"resplan/internal/capacity"
	"resplan/internal/database"
	"resplan/internal/models"

	"github.com/gin-gonic/gin"
)

//
// ДАШБОРД
//

type utilizationRow struct {
	ResourceID uint   `json:"resourceId"`
	Name       string `json:"name"`
	RoleTitle  string `json:"roleTitle"`
	capacity.EffectiveCapacityData
}

// DashboardUtilization — KPI загрузки по всем активным ресурсам за неделю.
func DashboardUtilization(c *gin.Context) {
	weekKey := c.Query("week")
	if weekKey == "" {
		weekKey = capacity.FormatWeekKey(time.Now())
	}
	if !capacity.ValidWeekKey(weekKey) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week key"})
		return
	}

	var resources []models.Resource
	if err := database.DB.Where("active = ?", true).Order("name asc").Find(&resources).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resources"})
		return
	}

	rows := make([]utilizationRow, 0, len(resources))
	overallocated := 0
	nearCapacity := 0

	for _, r := range resources {
		data := calc.Effective(r.ID, r.WeeklyCapacity, weekKey)
		if data.IsOverallocated {
			overallocated++
		}
		if data.IsNearCapacity {
			nearCapacity++
		}
		rows = append(rows, utilizationRow{
			ResourceID:            r.ID,
			Name:                  r.Name,
			RoleTitle:             r.RoleTitle,
			EffectiveCapacityData: data,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"week":          weekKey,
		"resources":     rows,
		"overallocated": overallocated,
		"nearCapacity":  nearCapacity,
	})
}
