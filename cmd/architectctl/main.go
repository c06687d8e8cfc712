package main

import "architect/cmd/architectctl/cmd"

func main() {
	cmd.Execute()
}
