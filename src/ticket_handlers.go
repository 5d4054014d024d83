package main

import (
	"encoding/json"
	"etix/src/cache"
	"etix/src/db"
	"etix/src/lib"
	"etix/src/models"
	"etix/src/types"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode"
)

func invalidateTicketListCache(ctx *gin.Context, userID uint) {
	rd := lib.GetRedisClient()
	cache.InvalidateUserTickets(ctx, rd, userID)
}

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			rd := lib.GetRedisClient()
			if val, ok := cache.GetUserTickets(ctx, rd, userId); ok {
				var list []models.Ticket
				if err := json.Unmarshal([]byte(val), &list); err == nil {
					ctx.JSON(http.StatusOK, gin.H{"data": list})
					return
				}
			}
			var list []models.Ticket
			gdb := db.GetDb()
			if err := gdb.
				Preload("Event").
				Where("user_id = ?", userId).
				Order("created_at DESC").
				Find(&list).
				Error; err != nil {
				log.Printf("[tickets] error listing tickets for user %d: %s\n", userId, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if b, err := json.Marshal(list); err == nil {
				cache.PutUserTickets(ctx, rd, userId, string(b))
			}
			ctx.JSON(http.StatusOK, gin.H{"data": list})
		}).
		GET("/tickets/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			var ticket models.Ticket
			gdb := db.GetDb()
			if err := gdb.
				Preload("Event").
				Where("id = ? AND user_id = ?", params.ID, userId).
				First(&ticket).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		GET("/tickets/:id/code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			var ticket models.Ticket
			gdb := db.GetDb()
			if err := gdb.
				Where("id = ? AND user_id = ?", params.ID, userId).
				First(&ticket).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			if ticket.Status != types.TICKET_CONFIRMED || ticket.QRPayload == "" {
				ctx.JSON(http.StatusConflict, gin.H{"error": "ticket has no admission code"})
				return
			}
			filepath, err := writeQRCode(ticket.TicketNumber, ticket.QRPayload)
			if err != nil {
				log.Printf("[tickets] error rendering code for ticket %d: %s\n", ticket.ID, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.FileAttachment(filepath, "eticket.jpeg")
		}).
		PUT("/tickets/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			coord := getCoordinator()
			ticket, err := coord.CancelTicket(ctx, userId, params.ID)
			if err != nil {
				log.Printf("[tickets] error cancelling ticket %d: %s\n", params.ID, err.Error())
				abortWithError(ctx, err)
				return
			}
			invalidateTicketListCache(ctx, userId)
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		})
	return g
}

func admissionHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/admission", func(ctx *gin.Context) {
			var body types.CreateAdmissionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			coord := getCoordinator()
			ticket, err := coord.VerifyAdmission(ctx, body.Code)
			if err != nil {
				log.Printf("[admission] rejected: %s\n", err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"ticket":  ticket.TicketNumber,
				"qty":     ticket.Quantity,
				"used_at": ticket.UsedAt,
			}})
		})
	return g
}

func writeQRCode(name, payload string) (string, error) {
	qrc, err := qrcode.New(payload)
	if err != nil {
		return "", err
	}
	tempdir := os.Getenv("TEMP_DIR")
	if tempdir == "" {
		tempdir = os.TempDir()
	}
	filepath := path.Join(tempdir, fmt.Sprintf("%s.jpeg", name))
	if err := qrc.Save(filepath); err != nil {
		log.Printf("Could not save qrcode to file [%s]: %s\n", filepath, err.Error())
		return "", err
	}
	return filepath, nil
}
