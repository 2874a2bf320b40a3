package main

import "github.com/me/storecms/internal/cli"

func main() {
	cli.Execute()
}
