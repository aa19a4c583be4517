package main

import "github.com/talal0047/pcs/cmd/pcs/cmd"

func main() {
	cmd.Execute()
}
