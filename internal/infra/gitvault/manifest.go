package gitvault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/attestly/policytrail/internal/domain"
)

const manifestFileName = "ledger.yaml"

func renderManifest(manifest domain.Manifest) string {
	manifest = manifest.WithDefaults()
	createdAt := ""
	if !manifest.CreatedAt.IsZero() {
		createdAt = manifest.CreatedAt.UTC().Format(time.RFC3339Nano)
	}

	var builder strings.Builder
	builder.WriteString("version: ")
	builder.WriteString(fmt.Sprintf("%d", manifest.Version))
	builder.WriteString("\n")
	builder.WriteString("name: ")
	builder.WriteString(manifest.Name)
	builder.WriteString("\n")
	builder.WriteString("stream_layout: ")
	builder.WriteString(string(manifest.StreamLayout))
	builder.WriteString("\n")
	builder.WriteString("hash_algorithm: ")
	builder.WriteString(string(manifest.HashAlgorithm))
	builder.WriteString("\n")
	if createdAt != "" {
		builder.WriteString("created_at: ")
		builder.WriteString(createdAt)
		builder.WriteString("\n")
	}
	return builder.String()
}

func parseManifest(data []byte) (domain.Manifest, error) {
	lines := strings.Split(string(data), "\n")
	manifest := domain.Manifest{}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "version":
			version, err := strconv.Atoi(value)
			if err != nil {
				return domain.Manifest{}, fmt.Errorf("parse manifest version: %w", err)
			}
			manifest.Version = version
		case "name":
			manifest.Name = value
		case "stream_layout":
			layout, err := domain.ParseStreamLayout(value)
			if err != nil {
				return domain.Manifest{}, fmt.Errorf("parse manifest stream_layout: %w", err)
			}
			manifest.StreamLayout = layout
		case "hash_algorithm":
			alg, err := domain.ParseHashAlgorithm(value)
			if err != nil {
				return domain.Manifest{}, fmt.Errorf("parse manifest hash_algorithm: %w", err)
			}
			manifest.HashAlgorithm = alg
		case "created_at":
			if value == "" {
				continue
			}
			parsed, err := time.Parse(time.RFC3339Nano, value)
			if err != nil {
				return domain.Manifest{}, fmt.Errorf("parse manifest created_at: %w", err)
			}
			manifest.CreatedAt = parsed.UTC()
		}
	}

	return manifest.WithDefaults(), nil
}

func LoadManifest(path string) (domain.Manifest, error) {
	manifestPath := filepath.Join(path, manifestFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Manifest{Version: domain.ManifestVersion}.WithDefaults(), nil
		}
		return domain.Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	manifest, err := parseManifest(data)
	if err != nil {
		return domain.Manifest{}, err
	}
	return manifest.WithDefaults(), nil
}
