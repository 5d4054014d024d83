package main

import (
	"etix/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func purchaseHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/purchases", func(ctx *gin.Context) {
			var body types.CreatePurchaseRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			coord := getCoordinator()
			intent, redirectURL, err := coord.InitiatePurchase(ctx, userId, body.EventID, body.Quantity)
			if err != nil {
				log.Printf("[purchases] error initiating purchase: %s\n", err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{
				"reference":  intent.Reference,
				"amount":     intent.Amount,
				"expires_at": intent.ExpiresAt,
				"url":        redirectURL,
			})
		}).
		GET("/purchases/:reference", func(ctx *gin.Context) {
			var params types.ReconcileURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			coord := getCoordinator()
			intent, err := coord.LookupIntent(ctx, userId, params.Reference)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": intent})
		}).
		GET("/purchases/:reference/verify", func(ctx *gin.Context) {
			var params types.ReconcileURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			coord := getCoordinator()
			ticket, err := coord.ReconcilePayment(ctx, params.Reference)
			if err != nil {
				log.Printf("[purchases] error reconciling %s: %s\n", params.Reference, err.Error())
				abortWithError(ctx, err)
				return
			}
			invalidateTicketListCache(ctx, ticket.UserID)
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		})
	return g
}
