package main

import (
	"os"

	"github.com/abhatt13/referral-outreach-app/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
