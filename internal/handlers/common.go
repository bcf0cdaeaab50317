package handlers

import (
	"resplan/internal/capacity"
	"resplan/internal/grid"
	"resplan/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// зависимости хендлеров, прокидываются из server.NewRouter
var (
	gridManager *grid.Manager
	calc        *capacity.Calculator
)

func Init(m *grid.Manager, c *capacity.Calculator) {
	gridManager = m
	calc = c
}

func currentUserID(c *gin.Context) uint {
	sess := sessions.Default(c)
	if uid, ok := sess.Get("user_id").(uint); ok {
		return uid
	}
	return 0
}

func currentRole(c *gin.Context) models.UserRole {
	sess := sessions.Default(c)
	roleStr, _ := sess.Get("role").(string)
	return models.UserRole(roleStr)
}
