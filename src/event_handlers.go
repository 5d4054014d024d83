package main

import (
	"etix/src/config"
	"etix/src/db"
	"etix/src/models"
	"etix/src/types"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func eventHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/events", func(ctx *gin.Context) {
			var list []models.Event
			gdb := db.GetDb()
			if err := gdb.
				Where("status = ?", types.EVENT_PUBLISHED).
				Order("date ASC").
				Find(&list).
				Error; err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list})
		}).
		GET("/events/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var event models.Event
			gdb := db.GetDb()
			if err := gdb.
				Where("id = ?", params.ID).
				First(&event).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": event})
		}).
		POST("/events", func(ctx *gin.Context) {
			var body types.CreateEventRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			date, err := time.Parse(config.TIME_PARSE_FORMAT, body.Date)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			event := models.Event{
				Title:            body.Title,
				Location:         body.Location,
				Date:             date,
				TicketPrice:      types.Money(body.TicketPrice),
				TotalTickets:     body.TotalTickets,
				AvailableTickets: body.TotalTickets,
			}
			gdb := db.GetDb()
			if err := gdb.Create(&event).Error; err != nil {
				log.Printf("[events] error creating event: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": event})
		}).
		PUT("/events/:id/publish", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			gdb := db.GetDb()
			res := gdb.Model(&models.Event{}).
				Where("id = ? AND status = ?", params.ID, types.EVENT_DRAFT).
				UpdateColumn("status", types.EVENT_PUBLISHED)
			if res.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": "only draft events can be published"})
				return
			}
			ctx.Status(http.StatusOK)
		}).
		PUT("/events/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			gdb := db.GetDb()
			res := gdb.Model(&models.Event{}).
				Where("id = ? AND status IN ?", params.ID, []types.EventStatus{types.EVENT_DRAFT, types.EVENT_PUBLISHED}).
				UpdateColumn("status", types.EVENT_CANCELED)
			if res.Error != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.JSON(http.StatusConflict, gin.H{"error": "event cannot be cancelled"})
				return
			}
			log.Printf("[events] event %d cancelled by organizer\n", params.ID)
			ctx.Status(http.StatusOK)
		})
	return g
}
