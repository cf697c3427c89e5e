package main

import "github.com/mvp-joe/slotscan/internal/cli"

func main() {
	cli.Execute()
}
