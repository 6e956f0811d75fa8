package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/spfc-calendar/internal/calendar"
	"github.com/pfrederiksen/spfc-calendar/internal/event"
)

func main() {
	// Sample fixture one week out
	home := true
	evt := event.NewEvent("Brasileirão", "Palmeiras", time.Now().AddDate(0, 0, 7).Format("02/01/2006"), "16:00")
	evt.Venue = "MorumBIS"
	evt.Home = &home

	icsContent, err := calendar.GenerateICS(evt, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating calendar: %v\n", err)
		os.Exit(1)
	}

	filename := "test-spfc-fixture.ics"
	if err := os.WriteFile(filename, []byte(icsContent), 0600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Generated calendar file: %s\n\n", filename)
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(icsContent)
}
