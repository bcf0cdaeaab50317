package main

import (
	"fmt"
	"log"

	"resplan/internal/capacity"
	"resplan/internal/config"
	"resplan/internal/database"
	"resplan/internal/grid"
	"resplan/internal/server"
)

func main() {
	cfg := config.Load()
	database.Init(cfg.DBDSN)

	calc := capacity.NewCalculator(database.WeeklyAllocatedHours)

	manager := grid.NewManager(grid.ManagerConfig{
		Mutate:      database.SaveAllocationCell,
		Notify:      logNotify,
		Debounce:    cfg.GridDebounce,
		SaveTimeout: cfg.GridSaveTimeout,
		SessionTTL:  cfg.GridSessionTTL,
		OnAllSaved: func(s *grid.Session) {
			database.CreateAuditLog(s.UserID, "allocation", 0, "batch_save",
				fmt.Sprintf("Пакетное сохранение грида (сессия %s)", s.ID))
		},
	})
	defer manager.Shutdown()

	r := server.NewRouter(cfg, manager, calc)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("starting server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// notify-контракт грида: на сервере это просто лог
func logNotify(title, message, severity string) {
	log.Printf("[%s] %s: %s", severity, title, message)
}
