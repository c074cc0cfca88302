package main

import (
	"os"

	"github.com/attestly/policytrail/pkg/policytrail"
)

func main() {
	os.Exit(policytrail.Execute())
}
