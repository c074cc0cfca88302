package cli

import (
	"os"
	"strconv"
	"strings"

	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/internal/infra/gitvault"
	"github.com/attestly/policytrail/internal/platform"
	"github.com/spf13/cobra"
)

type RootOptions struct {
	RepoPath      string
	JSONOutput    bool
	LogLevel      string
	LogFormat     string
	SignCommits   bool
	SignKey       string
	StreamLayout  domain.StreamLayout
	HashAlgorithm domain.HashAlgorithm
}

func newRootCmd() *cobra.Command {
	opts := &RootOptions{
		LogLevel:      envDefault("POLICYTRAIL_LOG_LEVEL", "info"),
		LogFormat:     envDefault("POLICYTRAIL_LOG_FORMAT", "text"),
		SignCommits:   envBoolDefault("POLICYTRAIL_GIT_SIGN", false),
		SignKey:       envDefault("POLICYTRAIL_GIT_SIGN_KEY", ""),
		StreamLayout:  domain.DefaultStreamLayout,
		HashAlgorithm: domain.DefaultHashAlgorithm,
	}
	cmd := &cobra.Command{
		Use:           "policytrail",
		Short:         "PolicyTrail evidence ledger CLI",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(opts.SignKey) != "" {
				opts.SignCommits = true
			}
			_, err := platform.ConfigureLogger(opts.LogLevel, opts.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if skipsManifest(cmd) {
				return nil
			}
			manifest, err := gitvault.LoadManifest(opts.RepoPath)
			if err != nil {
				return err
			}
			opts.StreamLayout = manifest.StreamLayout
			opts.HashAlgorithm = manifest.HashAlgorithm
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.RepoPath, "ledger", ".", "Path to the ledger repository")
	cmd.PersistentFlags().BoolVar(&opts.JSONOutput, "json", false, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format (text, json)")
	cmd.PersistentFlags().BoolVar(&opts.SignCommits, "sign", opts.SignCommits, "Sign git commits (requires gpg/ssh configuration)")
	cmd.PersistentFlags().StringVar(&opts.SignKey, "sign-key", opts.SignKey, "Signing key id for git commit signing")

	cmd.AddCommand(
		newInitCmd(opts),
		newStatusCmd(opts),
		newTopicCmd(opts),
		newAppendCmd(opts),
		newAmendCmd(opts),
		newGetCmd(opts),
		newLogCmd(opts),
		newVerifyCmd(opts),
		newInspectCmd(opts),
		newIndexCmd(opts),
		newMaintenanceCmd(opts),
		newCanonCmd(opts),
	)

	return cmd
}

// init and the canon subcommands run without an existing ledger.
func skipsManifest(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "init" || c.Name() == "canon" {
			return true
		}
	}
	return false
}

func envDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBoolDefault(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
