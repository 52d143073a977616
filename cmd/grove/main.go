package main

import "github.com/YuminosukeSato/grove/cmd/grove/cmd"

func main() {
	cmd.Execute()
}
