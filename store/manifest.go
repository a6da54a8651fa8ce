package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rahulunair/vekta/record"
)

// ErrConfigMismatch is returned when a store is opened against a layout
// (dimensions/label_size) that differs from the one it was created with.
var ErrConfigMismatch = errors.New("store: dimensions/label_size mismatch with existing store")

// manifest is a tiny sidecar file recording the layout a store was created
// with. It lives outside the packed record file so the record file itself
// keeps the "no header, no footer, no magic bytes" invariant from spec §3 —
// this is a separate file, not part of the record format. Grounded on the
// teacher's own internal/manifest package: a small self-describing sidecar
// alongside the primary data file, rewritten here for a single-value layout
// instead of vecgo's multi-segment manifest.
type manifest struct {
	LabelSize  int `json:"label_size"`
	Dimensions int `json:"dimensions"`
}

func manifestPath(storePath string) string {
	return storePath + ".manifest.json"
}

// checkOrCreateManifest validates the store's on-disk layout against l,
// writing a fresh manifest if the store (and therefore its manifest) does
// not exist yet. On mismatch, it returns ErrConfigMismatch without ever
// touching the record file, satisfying the "file is not modified" guarantee
// spec.md's config-mismatch scenario requires.
func checkOrCreateManifest(storePath string, l record.Layout) error {
	path := manifestPath(storePath)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return writeManifest(path, l)
	}
	if err != nil {
		return fmt.Errorf("store: reading manifest: %w", err)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("store: corrupt manifest: %w", err)
	}
	if m.LabelSize != l.LabelSize || m.Dimensions != l.Dimensions {
		return fmt.Errorf("%w: manifest has label_size=%d dimensions=%d, requested label_size=%d dimensions=%d",
			ErrConfigMismatch, m.LabelSize, m.Dimensions, l.LabelSize, l.Dimensions)
	}
	return nil
}

func writeManifest(path string, l record.Layout) error {
	data, err := json.Marshal(manifest{LabelSize: l.LabelSize, Dimensions: l.Dimensions})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
