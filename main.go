package main

import "github.com/iksnae/agent-audit/cmd"

func main() {
	cmd.Execute()
}
