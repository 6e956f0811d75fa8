package main

import "github.com/pfrederiksen/spfc-calendar/internal/cli"

func main() {
	cli.Execute()
}
