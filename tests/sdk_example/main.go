package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/attestly/policytrail/pkg/policytrailsdk"
)

func main() {
	repo := os.Getenv("POLICYTRAIL_LEDGER")
	if repo == "" {
		fmt.Fprintln(os.Stderr, "POLICYTRAIL_LEDGER is required (path to the ledger repository)")
		os.Exit(1)
	}

	cfg := policytrailsdk.DefaultConfig(repo)
	cfg.AutoWatch = true
	cfg.Index.Interval = 1 * time.Second

	ctx := context.Background()
	client, err := policytrailsdk.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if _, err := client.SyncIndex(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "index sync: %v\n", err)
	}

	entry, err := client.Get(ctx, "access-review", "svc_payments")
	if err != nil {
		fmt.Fprintf(os.Stderr, "get: %v\n", err)
	} else {
		fmt.Printf("ledger get entry=%s kind=%s payload=%s\n", entry.EntryID, entry.Kind, string(entry.Payload))
	}

	rows, err := client.Query(ctx, "SELECT subject_id, payload FROM evidence_state WHERE topic = 'access-review' AND revoked = 0 LIMIT 5")
	if err != nil {
		fmt.Fprintf(os.Stderr, "query: %v\n", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var subjectID string
		var payload []byte
		if err := rows.Scan(&subjectID, &payload); err != nil {
			fmt.Fprintf(os.Stderr, "scan: %v\n", err)
			return
		}
		fmt.Printf("index row subject=%s payload=%s\n", subjectID, string(payload))
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "rows: %v\n", err)
	}
}
