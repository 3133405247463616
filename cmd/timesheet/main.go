package main

import "github.com/nhle/timesheet/internal/cli"

func main() {
	cli.Execute()
}
