package main

import "github.com/deploymenttheory/go-vdo/cmd"

func main() {
	cmd.Execute()
}
