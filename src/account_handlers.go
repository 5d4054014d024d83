package main

import (
	"etix/src/db"
	"etix/src/models"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func accountHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/account/balance", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var user models.User
			gdb := db.GetDb()
			if err := gdb.
				Select("id", "balance").
				Where("id = ?", userId).
				First(&user).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"balance": user.Balance})
		}).
		GET("/account/transactions", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			var list []models.Transaction
			gdb := db.GetDb()
			if err := gdb.
				Where("user_id = ?", userId).
				Order("created_at DESC").
				Find(&list).
				Error; err != nil {
				log.Printf("[account] error listing transactions for user %d: %s\n", userId, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list})
		})
	return g
}
