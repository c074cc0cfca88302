package domain

import "time"

const ManifestVersion = 1

type Manifest struct {
	Version       int
	Name          string
	CreatedAt     time.Time
	StreamLayout  StreamLayout
	HashAlgorithm HashAlgorithm
}

func NewManifest(name string, createdAt time.Time) Manifest {
	return Manifest{
		Version:       ManifestVersion,
		Name:          name,
		CreatedAt:     createdAt.UTC(),
		StreamLayout:  DefaultStreamLayout,
		HashAlgorithm: DefaultHashAlgorithm,
	}
}

func (m Manifest) WithDefaults() Manifest {
	if m.Version == 0 {
		m.Version = ManifestVersion
	}
	if m.StreamLayout == "" {
		m.StreamLayout = DefaultStreamLayout
	}
	if m.HashAlgorithm == "" {
		m.HashAlgorithm = DefaultHashAlgorithm
	}
	return m
}
