package main

import (
	"etix/src/cache"
	"etix/src/config"
	"etix/src/db"
	"etix/src/events"
	"etix/src/gateway"
	"etix/src/inventory"
	"etix/src/lib"
	"etix/src/lib/mailer"
	"etix/src/purchase"
	"etix/src/tickets"
	"etix/src/users"
	"etix/src/wallet"
	"log"
)

var coordinator *purchase.Coordinator

// getCoordinator wires the pipeline once from the shared clients. Tests
// replace the singleton through setCoordinator instead.
func getCoordinator() *purchase.Coordinator {
	if coordinator != nil {
		return coordinator
	}
	gdb := db.GetDb()
	rd := lib.GetRedisClient()
	qrKey, err := config.QRSecret()
	if err != nil {
		log.Fatalf("invalid API_QRC_SECRET: %s", err.Error())
	}
	coordinator = purchase.NewCoordinator(purchase.CoordinatorParams{
		Events:    events.NewStore(gdb),
		Users:     users.NewStore(gdb),
		Tickets:   tickets.NewLedger(gdb),
		Inventory: inventory.NewLedger(gdb),
		Wallet:    wallet.NewLedger(gdb),
		Gateway:   gateway.NewStripeGateway(lib.GetStripeClient(), config.Currency(), config.GatewayTimeout()),
		Intents:   cache.NewRedisIntentStore(rd),
		Notifier:  mailer.NewDispatcher(),
		IntentTTL: config.IntentTTL(),
		QRKey:     qrKey,
	})
	return coordinator
}

func setCoordinator(c *purchase.Coordinator) {
	coordinator = c
}
