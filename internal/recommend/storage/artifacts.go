// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
)

const fileSuffix = ".gob.gz"

// ArtifactMetadata describes one stored artifact version.
type ArtifactMetadata struct {
	// Commodity the artifact predicts.
	Commodity string `json:"commodity"`

	// Version is monotonically increasing per commodity.
	Version int `json:"version"`

	// Kind is the regressor family.
	Kind string `json:"kind"`

	// Features is the ordered list of input names.
	Features []string `json:"features"`

	// TrainedAt is when the model was fit, if known.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed payload.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`
}

// payload is the checksummed, compressed part of a stored file.
type payload struct {
	FeatureNames []string
	Model        predict.Regressor
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata       ArtifactMetadata
	CompressedData []byte
}

// Store persists predictor artifacts on the local filesystem, one file per
// commodity version. It implements predict.Source by serving the latest
// version of each commodity.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per commodity
	versions map[string]int
}

// NewStore opens the store at baseDir, creating the directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for artifact storage
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	all, err := s.scan()
	if err != nil {
		return nil, fmt.Errorf("scan artifacts: %w", err)
	}
	for commodity, vs := range all {
		s.versions[commodity] = vs[0]
	}
	return s, nil
}

// scan returns every stored version per commodity, newest first.
func (s *Store) scan() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		commodity, version, ok := parseArtifactFilename(entry.Name())
		if !ok {
			continue
		}
		out[commodity] = append(out[commodity], version)
	}
	for _, vs := range out {
		sort.Sort(sort.Reverse(sort.IntSlice(vs)))
	}
	return out, nil
}

// parseArtifactFilename splits "{escaped commodity}_v{version}.gob.gz".
func parseArtifactFilename(name string) (commodity string, version int, ok bool) {
	base, found := strings.CutSuffix(name, fileSuffix)
	if !found {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version <= 0 {
		return "", 0, false
	}
	commodity, err = url.PathUnescape(base[:idx])
	if err != nil {
		return "", 0, false
	}
	return commodity, version, true
}

func (s *Store) artifactPath(commodity string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", url.PathEscape(commodity), version, fileSuffix))
}

// Save writes a as the next version for its commodity and returns the
// stored metadata.
func (s *Store) Save(ctx context.Context, a *predict.Artifact) (ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return ArtifactMetadata{}, err
	}
	if err := a.Validate(); err != nil {
		return ArtifactMetadata{}, err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(payload{FeatureNames: a.FeatureNames, Model: a.Model}); err != nil {
		return ArtifactMetadata{}, fmt.Errorf("encode artifact: %w", err)
	}
	sum := sha256.Sum256(raw.Bytes())

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw.Bytes()); err != nil {
		return ArtifactMetadata{}, fmt.Errorf("compress artifact: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return ArtifactMetadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	meta := ArtifactMetadata{
		Commodity: a.Commodity,
		Version:   s.versions[a.Commodity] + 1,
		Kind:      a.Model.Kind(),
		Features:  append([]string(nil), a.FeatureNames...),
		TrainedAt: a.TrainedAt,
		SavedAt:   time.Now().UTC(),
		Checksum:  hex.EncodeToString(sum[:]),
		SizeBytes: int64(compressed.Len()),
	}

	// Write to a temp file and rename so readers never see a partial file.
	tmp, err := os.CreateTemp(s.baseDir, ".artifact-*")
	if err != nil {
		return ArtifactMetadata{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after successful rename

	if err := gob.NewEncoder(tmp).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		_ = tmp.Close() //nolint:errcheck // already failing
		return ArtifactMetadata{}, fmt.Errorf("write artifact file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return ArtifactMetadata{}, fmt.Errorf("close artifact file: %w", err)
	}
	if err := os.Rename(tmpName, s.artifactPath(a.Commodity, meta.Version)); err != nil {
		return ArtifactMetadata{}, fmt.Errorf("publish artifact file: %w", err)
	}

	s.versions[a.Commodity] = meta.Version
	return meta, nil
}

// LoadArtifact returns the latest version for commodity. It implements
// predict.Source.
func (s *Store) LoadArtifact(ctx context.Context, commodity string) (*predict.Artifact, error) {
	return s.LoadVersion(ctx, commodity, 0)
}

// LoadVersion returns a specific version, or the latest when version is 0.
func (s *Store) LoadVersion(ctx context.Context, commodity string, version int) (*predict.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		if version, ok = s.versions[commodity]; !ok {
			return nil, predict.NotFound(commodity)
		}
	}

	sf, err := readStoredFile(s.artifactPath(commodity, version))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, predict.NotFound(commodity)
		}
		return nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, fmt.Errorf("%w: decompress %s v%d: %v", predict.ErrInvalidArtifact, commodity, version, err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s v%d: %v", predict.ErrInvalidArtifact, commodity, version, err)
	}

	sum := sha256.Sum256(raw)
	if got := hex.EncodeToString(sum[:]); got != sf.Metadata.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch for %s v%d: expected %s, got %s",
			predict.ErrInvalidArtifact, commodity, version, sf.Metadata.Checksum, got)
	}

	var p payload
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: decode %s v%d: %v", predict.ErrInvalidArtifact, commodity, version, err)
	}

	a := &predict.Artifact{
		Commodity:    sf.Metadata.Commodity,
		FeatureNames: p.FeatureNames,
		Model:        p.Model,
		Version:      sf.Metadata.Version,
		TrainedAt:    sf.Metadata.TrainedAt,
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func readStoredFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from an escaped commodity name
	if err != nil {
		return nil, fmt.Errorf("open artifact file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", predict.ErrInvalidArtifact, filepath.Base(path), err)
	}
	return &sf, nil
}

// LatestVersion returns the newest version stored for commodity.
func (s *Store) LatestVersion(commodity string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[commodity]
	return v, ok
}

// Commodities returns the commodities with at least one stored version, sorted.
func (s *Store) Commodities() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.versions))
	for c := range s.versions {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// List returns metadata for the latest version of every commodity, sorted
// by commodity. Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]ArtifactMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ArtifactMetadata, 0, len(s.versions))
	for commodity, version := range s.versions {
		sf, err := readStoredFile(s.artifactPath(commodity, version))
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Commodity < out[j].Commodity })
	return out, nil
}

// Delete removes one version. If it was the latest, the next newest
// version becomes current.
func (s *Store) Delete(ctx context.Context, commodity string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.artifactPath(commodity, version)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return predict.NotFound(commodity)
		}
		return fmt.Errorf("delete artifact: %w", err)
	}

	if s.versions[commodity] != version {
		return nil
	}
	all, err := s.scan()
	if err != nil {
		return fmt.Errorf("rescan artifacts: %w", err)
	}
	if vs := all[commodity]; len(vs) > 0 {
		s.versions[commodity] = vs[0]
	} else {
		delete(s.versions, commodity)
	}
	return nil
}

// Prune keeps the newest keep versions of commodity and removes the rest.
// It returns the number of files removed.
func (s *Store) Prune(ctx context.Context, commodity string, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.scan()
	if err != nil {
		return 0, fmt.Errorf("scan artifacts: %w", err)
	}

	removed := 0
	vs := all[commodity]
	for i := keep; i < len(vs); i++ {
		if err := os.Remove(s.artifactPath(commodity, vs[i])); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s v%d: %w", commodity, vs[i], err)
		}
		removed++
	}
	return removed, nil
}

// Register gob types for the on-disk format.
//
//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(ArtifactMetadata{})
	gob.Register(storedFile{})
}
