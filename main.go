package main

import "github.com/safwentrabelsi/spl-approval-revoker/cmd"

func main() {
	cmd.Execute()
}
