package main

import (
	"encoding/json"
	"errors"
	"etix/src/types"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "checkout.session.completed", "checkout.session.expired", "checkout.session.async_payment_succeeded", "checkout.session.async_payment_failed":
			var cs stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
				log.Printf("[Stripe] Error parsing CheckoutSession: %s\n", err.Error())
				break
			}
			coord := getCoordinator()
			ticket, err := coord.ReconcilePayment(ctx, cs.ID)
			if err != nil {
				if errors.Is(err, types.ErrTransientUpstream) {
					// 5xx tells the gateway to redeliver.
					ctx.Status(http.StatusServiceUnavailable)
					return
				}
				log.Printf("[Stripe] reconciliation of %s did not confirm: %s\n", cs.ID, err.Error())
				break
			}
			invalidateTicketListCache(ctx, ticket.UserID)
		}
		ctx.Status(http.StatusOK)
	})
	return apiv1
}
