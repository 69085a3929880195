package main

import (
	"log"

	"github.com/MrSnakeDoc/automator/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ automator failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ automator failed to start: %v", err)
	}
}
