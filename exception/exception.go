package exception

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/trueside/fantoken/logx"
	"github.com/trueside/fantoken/monitoring"
)

// SafeGo runs fn in a goroutine and logs any panic instead of crashing the process.
func SafeGo(name string, fn func()) {
	go func() {
		defer recoverPanic(name, false)
		fn()
	}()
}

// SafeGoWithPanic is SafeGo for goroutines the process cannot live without; it exits after logging.
func SafeGoWithPanic(name string, fn func()) {
	go func() {
		defer recoverPanic(name, true)
		fn()
	}()
}

func recoverPanic(name string, exit bool) {
	if r := recover(); r != nil {
		monitoring.IncreasePanicCount()
		logx.Error("PANIC", fmt.Sprintf("Panic in %s: %v", name, r), string(debug.Stack()))
		if exit {
			os.Exit(1)
		}
	}
}
