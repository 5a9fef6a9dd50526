package main

import "github.com/cheesejaguar/oxide-release/cmd/oxide-release/cmd"

func main() {
	cmd.Execute()
}
