package main

import (
	"trigger-alerts/internal/cli"
)

func main() {
	cli.Execute()
}
