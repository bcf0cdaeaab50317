package handlers

import (
	"net/http"
	"strings"

	"resplan/internal/capacity"
	"resplan/internal/database"
	"resplan/internal/models"

	"github.com/gin-gonic/gin"
)

//
// СНАПШОТ ГРИДА
//

type allocationCell struct {
	ResourceID uint    `json:"resourceId"`
	ProjectID  uint    `json:"projectId"`
	WeekKey    string  `json:"weekKey"`
	Hours      float64 `json:"hours"`
}

type resourceWeekLoad struct {
	ResourceID uint   `json:"resourceId"`
	WeekKey    string `json:"weekKey"`
	capacity.EffectiveCapacityData
}

// GridSnapshot — сторона чтения для грида: аллокации за недели плюс
// производная загрузка по каждой паре ресурс/неделя. После каждого
// успешного сохранения клиент перечитывает именно этот снапшот.
func GridSnapshot(c *gin.Context) {
	weeksParam := c.Query("weeks")
	if weeksParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "weeks query parameter is required"})
		return
	}

	weekKeys := strings.Split(weeksParam, ",")
	for _, wk := range weekKeys {
		if !capacity.ValidWeekKey(wk) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week key: " + wk})
			return
		}
	}

	allocs, err := database.AllocationsForWeeks(weekKeys)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load allocations"})
		return
	}

	cells := make([]allocationCell, 0, len(allocs))
	for _, a := range allocs {
		cells = append(cells, allocationCell{
			ResourceID: a.ResourceID,
			ProjectID:  a.ProjectID,
			WeekKey:    a.WeekKey,
			Hours:      a.Hours,
		})
	}

	var resources []models.Resource
	if err := database.DB.Where("active = ?", true).Order("name asc").Find(&resources).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load resources"})
		return
	}

	loads := make([]resourceWeekLoad, 0, len(resources)*len(weekKeys))
	for _, r := range resources {
		for _, wk := range weekKeys {
			loads = append(loads, resourceWeekLoad{
				ResourceID:            r.ID,
				WeekKey:               wk,
				EffectiveCapacityData: calc.Effective(r.ID, r.WeeklyCapacity, wk),
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"allocations": cells,
		"loads":       loads,
	})
}
