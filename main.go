package main

import "github.com/cmdvault/cmdvault/cmd"

func main() {
	cmd.Execute()
}
