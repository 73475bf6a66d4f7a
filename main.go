package main

import (
	"fmt"
	"os"

	"github.com/omergehad405/EduMaster/cmd"
	"github.com/omergehad405/EduMaster/internal/failure"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "edumaster:", failure.Notice(err))
		os.Exit(1)
	}
}
