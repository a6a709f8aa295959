package main

import (
	"os"
	"runtime/debug"

	"github.com/trueside/fantoken/cmd"
	"github.com/trueside/fantoken/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("FANTOKEN CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}
