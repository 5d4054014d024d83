package main

import (
	"etix/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func refundHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets/:id/refund", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			coord := getCoordinator()
			outcome, amount, err := coord.QuoteRefund(ctx, userId, params.ID)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"eligible":   outcome.Eligible,
				"percentage": outcome.Percentage,
				"reason":     outcome.Reason,
				"amount":     amount,
			})
		}).
		POST("/tickets/:id/refund", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId := ctx.GetUint("id")
			coord := getCoordinator()
			txn, err := coord.ProcessRefund(ctx, userId, params.ID)
			if err != nil {
				log.Printf("[refunds] error refunding ticket %d: %s\n", params.ID, err.Error())
				abortWithError(ctx, err)
				return
			}
			invalidateTicketListCache(ctx, userId)
			ctx.JSON(http.StatusOK, gin.H{"data": txn})
		})
	return g
}
