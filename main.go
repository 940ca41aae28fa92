package main

import "github.com/user/trimline-cli/cmd"

func main() {
	cmd.Execute()
}
