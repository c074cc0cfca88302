package policytrail

import "github.com/attestly/policytrail/internal/cli"

// Execute runs the PolicyTrail CLI entrypoint.
func Execute() int {
	return cli.Execute()
}
