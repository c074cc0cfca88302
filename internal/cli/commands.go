package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	evidenceapp "github.com/attestly/policytrail/internal/app/evidence"
	indexapp "github.com/attestly/policytrail/internal/app/index"
	inspectapp "github.com/attestly/policytrail/internal/app/inspect"
	integrityapp "github.com/attestly/policytrail/internal/app/integrity"
	ledgerapp "github.com/attestly/policytrail/internal/app/ledger"
	maintenanceapp "github.com/attestly/policytrail/internal/app/maintenance"
	topicapp "github.com/attestly/policytrail/internal/app/topic"
	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/internal/infra/canonicaljson"
	"github.com/attestly/policytrail/internal/infra/entryv1"
	"github.com/attestly/policytrail/internal/infra/filesystem"
	"github.com/attestly/policytrail/internal/infra/gitvault"
	"github.com/attestly/policytrail/internal/infra/hash"
	"github.com/attestly/policytrail/internal/infra/ident"
	"github.com/attestly/policytrail/internal/infra/jsonpatch"
	"github.com/attestly/policytrail/internal/infra/schema"
	"github.com/attestly/policytrail/internal/infra/sqliteindex"
	"github.com/attestly/policytrail/internal/platform"
	"github.com/spf13/cobra"
)

func newInitCmd(opts *RootOptions) *cobra.Command {
	var name string
	var layout string
	var hashAlg string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize an evidence ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsedLayout, err := domain.ParseStreamLayout(layout)
			if err != nil {
				return err
			}
			parsedHash, err := domain.ParseHashAlgorithm(hashAlg)
			if err != nil {
				return err
			}
			service := ledgerapp.NewInitService(newGitStore(opts), platform.RealClock{})
			return service.Init(cmd.Context(), opts.RepoPath, ledgerapp.InitOptions{
				Name:          name,
				StreamLayout:  parsedLayout,
				HashAlgorithm: parsedHash,
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Ledger name")
	cmd.Flags().StringVar(&layout, "layout", string(domain.DefaultStreamLayout), "Stream layout (flat, sharded)")
	cmd.Flags().StringVar(&hashAlg, "hash", string(domain.DefaultHashAlgorithm), "Entry hash algorithm (sha256, blake3)")
	return cmd
}

func newStatusCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ledger status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := ledgerapp.NewStatusService(newGitStore(opts))
			status, err := service.Status(cmd.Context(), opts.RepoPath)
			if err != nil {
				return err
			}
			return writeStatus(cmd, status, opts.JSONOutput)
		},
	}
}

func newTopicCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Manage topics and payload schemas",
		RunE:  runHelp,
	}
	cmd.AddCommand(newTopicApplyCmd(opts), newTopicListCmd(opts))
	return cmd
}

func newTopicApplyCmd(opts *RootOptions) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "apply <name>",
		Short: "Create or update a topic payload schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := topicapp.NewService(newGitStore(opts), filesystem.SchemaSource{}, schema.JSONSchemaValidator{})
			return service.Apply(cmd.Context(), opts.RepoPath, args[0], schemaPath)
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "Path to JSON schema")
	if err := cmd.MarkFlagRequired("schema"); err != nil {
		return cmd
	}
	return cmd
}

func newTopicListCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered topics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := topicapp.NewService(newGitStore(opts), filesystem.SchemaSource{}, schema.JSONSchemaValidator{})
			topics, err := service.List(cmd.Context(), opts.RepoPath)
			if err != nil {
				return err
			}
			return writeTopicList(cmd, topics, opts.JSONOutput)
		},
	}
}

func newAppendCmd(opts *RootOptions) *cobra.Command {
	var kind string
	var payload string
	var payloadFile string
	var schemaVersion string
	cmd := &cobra.Command{
		Use:   "append <topic> <subject>",
		Short: "Append an entry to a subject's evidence stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedKind, err := domain.ParseEntryKind(kind)
			if err != nil {
				return err
			}

			var data []byte
			if parsedKind != domain.EntryKindRevocation {
				data, err = readJSONInput("payload", payload, payloadFile)
				if err != nil {
					return err
				}
			}

			service := newAppendService(opts)
			result, err := service.Append(cmd.Context(), opts.RepoPath, args[0], args[1], parsedKind, data, schemaVersion)
			if err != nil {
				return err
			}
			return writeAppendResult(cmd, result, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "decision", "Entry kind (decision, execution, annotation, revocation)")
	cmd.Flags().StringVar(&payload, "payload", "", "Inline JSON payload")
	cmd.Flags().StringVar(&payloadFile, "file", "", "Path to JSON payload")
	cmd.Flags().StringVar(&schemaVersion, "schema-version", "", "Payload schema version label")
	return cmd
}

func newAmendCmd(opts *RootOptions) *cobra.Command {
	var ops string
	var opsFile string
	cmd := &cobra.Command{
		Use:   "amend <topic> <subject>",
		Short: "Correct the head entry by appending a patched copy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readJSONInput("ops", ops, opsFile)
			if err != nil {
				return err
			}

			store := newGitStore(opts)
			service := evidenceapp.NewAmendService(
				store,
				entryv1.Decoder{},
				jsonpatch.Patcher{},
				newAppendService(opts),
				opts.StreamLayout,
			)
			result, err := service.Amend(cmd.Context(), opts.RepoPath, args[0], args[1], data)
			if err != nil {
				return err
			}
			return writeAppendResult(cmd, result, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&ops, "ops", "", "Inline JSON Patch operations")
	cmd.Flags().StringVar(&opsFile, "file", "", "Path to JSON Patch operations")
	return cmd
}

func newGetCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <topic> <subject>",
		Short: "Read the current entry for a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := evidenceapp.NewGetService(newGitStore(opts), entryv1.Decoder{}, newHasher(opts), opts.StreamLayout)
			result, err := service.Get(cmd.Context(), opts.RepoPath, args[0], args[1])
			if err != nil {
				return err
			}
			return writeGetResult(cmd, result, opts.JSONOutput)
		},
	}
}

func newLogCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log <topic> <subject>",
		Short: "Show a subject's evidence history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := evidenceapp.NewLogService(newGitStore(opts), entryv1.Decoder{}, newHasher(opts), opts.StreamLayout)
			records, err := service.Log(cmd.Context(), opts.RepoPath, args[0], args[1])
			if err != nil {
				return err
			}
			return writeLogResult(cmd, records, opts.JSONOutput)
		},
	}
}

func newVerifyCmd(opts *RootOptions) *cobra.Command {
	var deep bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify hash chains and report corruption",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := newGitStore(opts)
			service := integrityapp.NewVerifyService(
				store,
				store,
				entryv1.Decoder{},
				newHasher(opts),
				canonicaljson.Checker{},
			)
			var result integrityapp.VerifyResult
			spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
			label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Verifying ledger")
			err := withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
				var err error
				result, err = service.Verify(cmd.Context(), opts.RepoPath, integrityapp.VerifyOptions{Deep: deep})
				return err
			})
			if err != nil {
				return err
			}
			return writeVerifyResult(cmd, result, opts.JSONOutput)
		},
	}
	cmd.Flags().BoolVar(&deep, "deep", false, "Also check that payloads are in canonical form")
	return cmd
}

func newInspectCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Decode internal blobs",
		RunE:  runHelp,
	}
	cmd.AddCommand(newInspectBlobCmd(opts))
	return cmd
}

func newInspectBlobCmd(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "blob <hash>",
		Short: "Decode an entry blob by git object hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service := inspectapp.NewService(newGitStore(opts), entryv1.Decoder{}, newHasher(opts))
			result, err := service.InspectBlob(cmd.Context(), opts.RepoPath, args[0])
			if err != nil {
				return err
			}
			return writeInspectResult(cmd, result, opts.JSONOutput)
		},
	}
}

func newIndexCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Local sqlite mirror operations",
		RunE:  runHelp,
	}
	cmd.AddCommand(newIndexSyncCmd(opts), newIndexQueryCmd(opts))
	return cmd
}

func newIndexSyncCmd(opts *RootOptions) *cobra.Command {
	var dbPath string
	var full bool
	var fast bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the sqlite mirror from the ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := sqliteindex.OpenWithOptions(dbPath, sqliteindex.OpenOptions{Fast: fast})
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			gitStore := newGitStore(opts)
			service := indexapp.NewSyncService(gitStore, store, entryv1.Decoder{}, newHasher(opts))

			var result indexapp.SyncResult
			spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
			label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Syncing mirror")
			err = withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
				var err error
				result, err = service.Sync(cmd.Context(), opts.RepoPath, indexapp.SyncOptions{Full: full})
				return err
			})
			if err != nil {
				return err
			}
			return writeIndexSyncResult(cmd, result, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the sqlite mirror database")
	cmd.Flags().BoolVar(&full, "full", false, "Rebuild the mirror from scratch")
	cmd.Flags().BoolVar(&fast, "fast", false, "Relax sqlite durability for faster syncing")
	if err := cmd.MarkFlagRequired("db"); err != nil {
		return cmd
	}
	return cmd
}

func newIndexQueryCmd(opts *RootOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "query <topic> [subject]",
		Short: "Query the sqlite mirror",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqliteindex.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			service := indexapp.NewQueryService(store)
			if len(args) == 2 {
				record, err := service.Lookup(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return writeIndexRecords(cmd, []indexapp.EntryRecord{record}, opts.JSONOutput)
			}

			records, err := service.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeIndexRecords(cmd, records, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "Path to the sqlite mirror database")
	if err := cmd.MarkFlagRequired("db"); err != nil {
		return cmd
	}
	return cmd
}

func newMaintenanceCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Ledger maintenance operations",
		RunE:  runHelp,
	}
	cmd.AddCommand(newMaintenanceGCCmd(opts))
	return cmd
}

func newMaintenanceGCCmd(opts *RootOptions) *cobra.Command {
	var prune string
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Run git garbage collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service := maintenanceapp.NewGCService(newGitStore(opts))
			spin := spinnerEnabled(cmd.ErrOrStderr(), opts.JSONOutput)
			label := newRenderer(cmd.ErrOrStderr(), opts.JSONOutput).accent("Running git gc")
			err := withSpinner(cmd.Context(), cmd.ErrOrStderr(), spin, label, func() error {
				return service.GC(cmd.Context(), opts.RepoPath, maintenanceapp.GCOptions{Prune: prune})
			})
			if err != nil {
				return err
			}
			return writeGCResult(cmd, prune, opts.JSONOutput)
		},
	}
	cmd.Flags().StringVar(&prune, "prune", "now", "Prune unreachable objects (git gc --prune)")
	return cmd
}

func newAppendService(opts *RootOptions) *evidenceapp.AppendService {
	store := newGitStore(opts)
	return evidenceapp.NewAppendService(
		store,
		store,
		schema.JSONSchemaValidator{},
		canonicaljson.Canonicalizer{},
		entryv1.Encoder{},
		newHasher(opts),
		platform.RealClock{},
		ident.NewULIDGenerator(),
		opts.StreamLayout,
	)
}

func newGitStore(opts *RootOptions) *gitvault.Store {
	return gitvault.NewStoreWithOptions(gitvault.StoreOptions{
		SignCommits:   opts.SignCommits,
		SignKey:       opts.SignKey,
		HashAlgorithm: opts.HashAlgorithm,
	})
}

func newHasher(opts *RootOptions) hash.Hasher {
	return hash.ForAlgorithm(opts.HashAlgorithm)
}

type appendOutput struct {
	Commit    string `json:"commit"`
	EntryHash string `json:"entry_hash"`
	EntryID   string `json:"entry_id"`
}

type getOutput struct {
	Payload   json.RawMessage `json:"payload"`
	EntryHash string          `json:"entry_hash,omitempty"`
	EntryID   string          `json:"entry_id,omitempty"`
	Kind      string          `json:"kind,omitempty"`
}

type logOutput struct {
	Entries []logRecordOutput `json:"entries"`
}

type logRecordOutput struct {
	EntryHash  string `json:"entry_hash"`
	EntryID    string `json:"entry_id"`
	ParentHash string `json:"parent_hash,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Kind       string `json:"kind"`
}

type verifyOutput struct {
	Streams int                 `json:"streams"`
	Valid   int                 `json:"valid"`
	Issues  []verifyIssueOutput `json:"issues,omitempty"`
}

type verifyIssueOutput struct {
	StreamPath string `json:"stream_path"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

type gcOutput struct {
	Status string `json:"status"`
	Prune  string `json:"prune,omitempty"`
}

type inspectOutput struct {
	ObjectHash    string          `json:"object_hash"`
	EntryHash     string          `json:"entry_hash"`
	EntryID       string          `json:"entry_id"`
	Timestamp     int64           `json:"timestamp"`
	Topic         string          `json:"topic"`
	SubjectID     string          `json:"subject_id"`
	Kind          string          `json:"kind"`
	ParentHash    string          `json:"parent_hash,omitempty"`
	SchemaVersion string          `json:"schema_version,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
}

type indexSyncOutput struct {
	Skipped    bool   `json:"skipped"`
	Reset      bool   `json:"reset"`
	Streams    int    `json:"streams"`
	Upserted   int    `json:"upserted"`
	Revoked    int    `json:"revoked"`
	LastCommit string `json:"last_commit,omitempty"`
}

type indexRecordOutput struct {
	Topic         string          `json:"topic"`
	SubjectID     string          `json:"subject_id"`
	EntryID       string          `json:"entry_id"`
	EntryHash     string          `json:"entry_hash"`
	Kind          string          `json:"kind"`
	SchemaVersion string          `json:"schema_version,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	UpdatedAt     int64           `json:"updated_at"`
	Revoked       bool            `json:"revoked"`
}

type statusOutput struct {
	Path     string          `json:"path"`
	Bare     bool            `json:"bare"`
	Head     string          `json:"head,omitempty"`
	Manifest *manifestOutput `json:"manifest,omitempty"`
}

type manifestOutput struct {
	Version       int    `json:"version"`
	Name          string `json:"name"`
	StreamLayout  string `json:"stream_layout,omitempty"`
	HashAlgorithm string `json:"hash_algorithm,omitempty"`
	CreatedAt     string `json:"created_at,omitempty"`
}

type topicListOutput struct {
	Topics []string `json:"topics"`
}

func writeStatus(cmd *cobra.Command, status domain.LedgerStatus, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		output := statusOutput{
			Path: status.Path,
			Bare: status.IsBare,
		}
		if status.HasHead {
			output.Head = status.HeadHash
		}
		if status.HasManifest {
			manifest := manifestOutput{
				Version:       status.Manifest.Version,
				Name:          status.Manifest.Name,
				StreamLayout:  string(status.Manifest.StreamLayout),
				HashAlgorithm: string(status.Manifest.HashAlgorithm),
			}
			if !status.Manifest.CreatedAt.IsZero() {
				manifest.CreatedAt = status.Manifest.CreatedAt.Format(time.RFC3339Nano)
			}
			output.Manifest = &manifest
		}

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Path", status.Path); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Bare", fmt.Sprintf("%t", status.IsBare)); err != nil {
		return err
	}
	if status.HasHead {
		if err := writeKV(out, ui, "Head", status.HeadHash); err != nil {
			return err
		}
	} else {
		if err := writeKV(out, ui, "Head", ui.dim("(none)")); err != nil {
			return err
		}
	}
	if status.HasManifest {
		manifest := fmt.Sprintf("%s (v%d)", status.Manifest.Name, status.Manifest.Version)
		if err := writeKV(out, ui, "Manifest", manifest); err != nil {
			return err
		}
		if !status.Manifest.CreatedAt.IsZero() {
			if err := writeKV(out, ui, "Created", status.Manifest.CreatedAt.Format(time.RFC3339Nano)); err != nil {
				return err
			}
		}
		if status.Manifest.StreamLayout != "" {
			if err := writeKV(out, ui, "Stream Layout", string(status.Manifest.StreamLayout)); err != nil {
				return err
			}
		}
		if status.Manifest.HashAlgorithm != "" {
			if err := writeKV(out, ui, "Hash Algorithm", string(status.Manifest.HashAlgorithm)); err != nil {
				return err
			}
		}
	} else {
		if err := writeKV(out, ui, "Manifest", ui.dim("(missing)")); err != nil {
			return err
		}
	}
	return nil
}

func writeTopicList(cmd *cobra.Command, topics []string, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(topicListOutput{Topics: topics})
	}
	for _, topic := range topics {
		if _, err := fmt.Fprintln(out, topic); err != nil {
			return err
		}
	}
	return nil
}

func writeAppendResult(cmd *cobra.Command, result evidenceapp.AppendResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := appendOutput{
			Commit:    result.CommitHash,
			EntryHash: result.EntryHash,
			EntryID:   result.EntryID,
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Commit", result.CommitHash); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Entry Hash", result.EntryHash); err != nil {
		return err
	}
	return writeKV(out, ui, "Entry ID", result.EntryID)
}

func writeGetResult(cmd *cobra.Command, result evidenceapp.GetResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := getOutput{
			Payload:   json.RawMessage(result.Payload),
			EntryHash: result.EntryHash,
			EntryID:   result.EntryID,
			Kind:      result.Kind.String(),
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	if _, err := out.Write(result.Payload); err != nil {
		return err
	}
	if len(result.Payload) > 0 && result.Payload[len(result.Payload)-1] != '\n' {
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}
	return nil
}

func writeLogResult(cmd *cobra.Command, records []evidenceapp.LogRecord, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := logOutput{Entries: make([]logRecordOutput, 0, len(records))}
		for _, record := range records {
			payload.Entries = append(payload.Entries, logRecordOutput{
				EntryHash:  record.EntryHash,
				EntryID:    record.EntryID,
				ParentHash: record.ParentHash,
				Timestamp:  record.Timestamp,
				Kind:       record.Kind.String(),
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	for _, record := range records {
		kind := colorKind(ui, record.Kind.String())
		if _, err := fmt.Fprintf(out, "%s %s %s %d %s\n", record.EntryHash, record.EntryID, record.ParentHash, record.Timestamp, kind); err != nil {
			return err
		}
	}
	return nil
}

func writeVerifyResult(cmd *cobra.Command, result integrityapp.VerifyResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := verifyOutput{
			Streams: result.Streams,
			Valid:   result.Valid,
			Issues:  make([]verifyIssueOutput, 0, len(result.Issues)),
		}
		for _, issue := range result.Issues {
			payload.Issues = append(payload.Issues, verifyIssueOutput{
				StreamPath: issue.StreamPath,
				Code:       issue.Code,
				Message:    issue.Message,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	if result.Streams > 0 {
		ratio := float64(result.Valid) / float64(result.Streams)
		if _, err := fmt.Fprintf(out, "%s %s %d/%d\n", ui.key("Integrity"), ui.bar(24, ratio), result.Valid, result.Streams); err != nil {
			return err
		}
	}

	if len(result.Issues) == 0 {
		_, err := fmt.Fprintf(out, "%s: %d stream(s) verified\n", ui.ok("OK"), result.Streams)
		return err
	}

	if _, err := fmt.Fprintf(out, "%s %d stream(s): %d ok, %d issue(s)\n", ui.warn("Issues"), result.Streams, result.Valid, len(result.Issues)); err != nil {
		return err
	}
	for _, issue := range result.Issues {
		code := issue.Code
		if ui.color {
			code = ui.err(code)
		}
		if _, err := fmt.Fprintf(out, "- %s [%s] %s\n", issue.StreamPath, code, issue.Message); err != nil {
			return err
		}
	}
	return nil
}

func writeGCResult(cmd *cobra.Command, prune string, asJSON bool) error {
	out := cmd.OutOrStdout()
	prune = strings.TrimSpace(prune)
	if asJSON {
		payload := gcOutput{
			Status: "ok",
			Prune:  prune,
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}
	ui := newRenderer(out, asJSON)
	if prune == "" {
		_, err := fmt.Fprintln(out, ui.ok("GC complete"))
		return err
	}
	_, err := fmt.Fprintf(out, "%s (prune=%s)\n", ui.ok("GC complete"), prune)
	return err
}

func writeInspectResult(cmd *cobra.Command, result inspectapp.BlobResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := inspectOutput{
			ObjectHash:    result.ObjectHash,
			EntryHash:     result.EntryHash,
			EntryID:       result.Entry.EntryID,
			Timestamp:     result.Entry.Timestamp,
			Topic:         result.Entry.Topic,
			SubjectID:     result.Entry.SubjectID,
			Kind:          result.Entry.Kind.String(),
			ParentHash:    result.Entry.ParentHash,
			SchemaVersion: result.Entry.SchemaVersion,
			Payload:       rawJSON(result.Entry.Payload),
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	if err := writeKV(out, ui, "Object Hash", result.ObjectHash); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Entry Hash", result.EntryHash); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Entry ID", result.Entry.EntryID); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Timestamp", fmt.Sprintf("%d", result.Entry.Timestamp)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Topic", result.Entry.Topic); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Subject", result.Entry.SubjectID); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Kind", colorKind(ui, result.Entry.Kind.String())); err != nil {
		return err
	}
	if result.Entry.ParentHash != "" {
		if err := writeKV(out, ui, "Parent", result.Entry.ParentHash); err != nil {
			return err
		}
	}
	if result.Entry.SchemaVersion != "" {
		if err := writeKV(out, ui, "Schema Version", result.Entry.SchemaVersion); err != nil {
			return err
		}
	}
	if len(result.Entry.Payload) > 0 {
		if err := writeKV(out, ui, "Payload", string(result.Entry.Payload)); err != nil {
			return err
		}
	}
	return nil
}

func writeIndexSyncResult(cmd *cobra.Command, result indexapp.SyncResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := indexSyncOutput{
			Skipped:    result.Skipped,
			Reset:      result.Reset,
			Streams:    result.Streams,
			Upserted:   result.Upserted,
			Revoked:    result.Revoked,
			LastCommit: result.LastCommit,
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	state := ui.dim("idle")
	if result.Upserted > 0 {
		state = ui.ok("applied")
	}
	if err := writeKV(out, ui, "Status", state); err != nil {
		return err
	}
	if result.Reset {
		if err := writeKV(out, ui, "Reset", ui.warn("true")); err != nil {
			return err
		}
	}
	if err := writeKV(out, ui, "Streams", fmt.Sprintf("%d", result.Streams)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Upserted", fmt.Sprintf("%d", result.Upserted)); err != nil {
		return err
	}
	if err := writeKV(out, ui, "Revoked", fmt.Sprintf("%d", result.Revoked)); err != nil {
		return err
	}
	if result.LastCommit == "" {
		return writeKV(out, ui, "Last Commit", ui.dim("(none)"))
	}
	return writeKV(out, ui, "Last Commit", result.LastCommit)
}

func writeIndexRecords(cmd *cobra.Command, records []indexapp.EntryRecord, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		payload := make([]indexRecordOutput, 0, len(records))
		for _, record := range records {
			payload = append(payload, indexRecordOutput{
				Topic:         record.Topic,
				SubjectID:     record.SubjectID,
				EntryID:       record.EntryID,
				EntryHash:     record.EntryHash,
				Kind:          record.Kind,
				SchemaVersion: record.SchemaVersion,
				Payload:       rawJSON(record.Payload),
				UpdatedAt:     record.UpdatedAt,
				Revoked:       record.Revoked,
			})
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(payload)
	}

	ui := newRenderer(out, asJSON)
	for _, record := range records {
		kind := colorKind(ui, record.Kind)
		if record.Revoked {
			kind = ui.err(record.Kind)
		}
		if _, err := fmt.Fprintf(out, "%s %s %s %d %s\n", record.SubjectID, record.EntryID, record.EntryHash, record.UpdatedAt, kind); err != nil {
			return err
		}
	}
	return nil
}

func writeKV(out io.Writer, ui renderer, key, value string) error {
	_, err := fmt.Fprintf(out, "%s: %s\n", ui.key(key), value)
	return err
}

func colorKind(ui renderer, kind string) string {
	switch kind {
	case "decision":
		return ui.ok(kind)
	case "execution":
		return ui.accent(kind)
	case "annotation":
		return ui.warn(kind)
	case "revocation":
		return ui.err(kind)
	default:
		return ui.dim(kind)
	}
}

func rawJSON(data []byte) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}

func readJSONInput(label, inline, filePath string) ([]byte, error) {
	inline = strings.TrimSpace(inline)
	filePath = strings.TrimSpace(filePath)
	if inline != "" && filePath != "" {
		return nil, fmt.Errorf("use either --%s or --file, not both", label)
	}
	if inline == "" && filePath == "" {
		return nil, fmt.Errorf("%s is required (use --%s or --file)", label, label)
	}
	if inline != "" {
		return []byte(inline), nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", label, err)
	}
	return data, nil
}

func runHelp(cmd *cobra.Command, _ []string) error {
	return cmd.Help()
}
