package main

import (
	"context"
	"log"

	"github.com/Apurer/northwind-orders/internal/app/worker"
)

func main() {
	if err := worker.Run(context.Background()); err != nil {
		log.Fatalf("order worker exited: %v", err)
	}
}
