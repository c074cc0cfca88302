package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/attestly/policytrail/internal/domain"
	"github.com/attestly/policytrail/internal/infra/hash"
	"github.com/attestly/policytrail/pkg/jcs"
	"github.com/spf13/cobra"
)

func newCanonCmd(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canon",
		Short: "Canonical JSON utilities",
		RunE:  runHelp,
	}
	cmd.AddCommand(newCanonFormatCmd(opts), newCanonCheckCmd(opts), newCanonHashCmd(opts))
	return cmd
}

func newCanonFormatCmd(_ *RootOptions) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "format [json]",
		Short: "Rewrite JSON into canonical form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readCanonInput(cmd, args, filePath)
			if err != nil {
				return err
			}
			canonical, err := jcs.CanonicalizeBytes(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(canonical); err != nil {
				return err
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "Path to a JSON document (defaults to stdin)")
	return cmd
}

func newCanonCheckCmd(opts *RootOptions) *cobra.Command {
	var filePath string
	cmd := &cobra.Command{
		Use:   "check [json]",
		Short: "Check whether JSON is already canonical",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readCanonInput(cmd, args, filePath)
			if err != nil {
				return err
			}
			canonical := jcs.IsCanonical(data)
			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(canonCheckOutput{Canonical: canonical}); err != nil {
					return err
				}
			} else {
				ui := newRenderer(out, opts.JSONOutput)
				if canonical {
					if _, err := fmt.Fprintln(out, ui.ok("canonical")); err != nil {
						return err
					}
				} else {
					if _, err := fmt.Fprintln(out, ui.warn("not canonical")); err != nil {
						return err
					}
				}
			}
			if !canonical {
				return ExitError{Code: ExitInvalid, Kind: KindValidation, Message: "input is not canonical"}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "Path to a JSON document (defaults to stdin)")
	return cmd
}

func newCanonHashCmd(opts *RootOptions) *cobra.Command {
	var filePath string
	var hashAlg string
	cmd := &cobra.Command{
		Use:   "hash [json]",
		Short: "Hash the canonical form of a JSON document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsedHash, err := domain.ParseHashAlgorithm(hashAlg)
			if err != nil {
				return err
			}
			data, err := readCanonInput(cmd, args, filePath)
			if err != nil {
				return err
			}
			canonical, err := jcs.CanonicalizeBytes(data)
			if err != nil {
				return err
			}
			digest := hash.ForAlgorithm(parsedHash).SumHex(canonical)
			out := cmd.OutOrStdout()
			if opts.JSONOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(canonHashOutput{
					Algorithm: string(domain.NormalizeHashAlgorithm(parsedHash)),
					Digest:    digest,
				})
			}
			_, err = fmt.Fprintln(out, digest)
			return err
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "Path to a JSON document (defaults to stdin)")
	cmd.Flags().StringVar(&hashAlg, "hash", string(domain.DefaultHashAlgorithm), "Hash algorithm (sha256, blake3)")
	return cmd
}

type canonCheckOutput struct {
	Canonical bool `json:"canonical"`
}

type canonHashOutput struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

func readCanonInput(cmd *cobra.Command, args []string, filePath string) ([]byte, error) {
	filePath = strings.TrimSpace(filePath)
	if len(args) == 1 && filePath != "" {
		return nil, fmt.Errorf("use either an inline argument or --file, not both")
	}
	if len(args) == 1 {
		return []byte(args[0]), nil
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return data, nil
}
