package domain

type LedgerStatus struct {
	Path        string
	IsBare      bool
	HasHead     bool
	HeadHash    string
	HasManifest bool
	Manifest    Manifest
}
