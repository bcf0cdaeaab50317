package database

import (
	"context"
	"fmt"
	"log"

	"resplan/internal/capacity"
	"resplan/internal/grid"
	"resplan/internal/models"

	"gorm.io/gorm/clause"
)

// WeeklyAllocatedHours — сумма часов ресурса за неделю по всем проектам.
// Это сторона чтения для расчёта загрузки; после каждого успешного
// сохранения здесь уже свежие данные.
func WeeklyAllocatedHours(resourceID uint, weekKey string) float64 {
	if DB == nil {
		return 0
	}
	var total float64
	err := DB.Model(&models.Allocation{}).
		Where("resource_id = ? AND week_key = ?", resourceID, weekKey).
		Select("COALESCE(SUM(hours), 0)").
		Scan(&total).Error
	if err != nil {
		log.Printf("failed to sum allocations for resource %d week %s: %v", resourceID, weekKey, err)
		return 0
	}
	return total
}

// SaveAllocationCell — мутация одной ячейки грида: upsert по тройке
// ресурс/проект/неделя. Подключается к grid.Executor как MutationFunc.
func SaveAllocationCell(ctx context.Context, vars grid.MutationVariables) error {
	if vars.ResourceID == 0 || vars.ProjectID == 0 {
		return fmt.Errorf("cell %s: resource and project are required", vars.CellKey)
	}
	if !capacity.ValidWeekKey(vars.WeekKey) {
		return fmt.Errorf("cell %s: invalid week key %q", vars.CellKey, vars.WeekKey)
	}
	if vars.Hours < 0 {
		return fmt.Errorf("cell %s: hours must not be negative", vars.CellKey)
	}

	alloc := models.Allocation{
		ResourceID: vars.ResourceID,
		ProjectID:  vars.ProjectID,
		WeekKey:    vars.WeekKey,
		Hours:      vars.Hours,
	}

	return DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "resource_id"}, {Name: "project_id"}, {Name: "week_key"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"hours", "updated_at"}),
		}).
		Create(&alloc).Error
}

// AllocationsForWeeks — снапшот грида: все аллокации активных ресурсов
// за указанные недели.
func AllocationsForWeeks(weekKeys []string) ([]models.Allocation, error) {
	var allocs []models.Allocation
	err := DB.
		Preload("Resource").
		Preload("Project").
		Where("week_key IN ?", weekKeys).
		Order("resource_id asc, project_id asc, week_key asc").
		Find(&allocs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load allocations: %w", err)
	}
	return allocs, nil
}
