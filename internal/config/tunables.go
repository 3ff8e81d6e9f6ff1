package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Tunables is the optional TOML overlay for the pipeline scalars, so
// operators can ship a file instead of re-deploying environment
// changes. Values present in the file win over the environment.
// Pointer fields tell a written zero apart from an omitted key.
type Tunables struct {
	DefaultK              *int     `toml:"default_k"`
	CandidateTopN         *int     `toml:"candidate_topn"`
	Stage3Candidates      *int     `toml:"stage3_candidates"`
	AlphaAudio            *float64 `toml:"alpha_audio"`
	MaxPerArtistSoft      *int     `toml:"max_per_artist_soft"`
	MaxPerArtistFinal     *int     `toml:"max_per_artist_final"`
	PenaltyPerExtra       *float64 `toml:"penalty_per_extra"`
	OffrailPenaltyGeneral *float64 `toml:"offrail_penalty_general"`
	OffrailPenaltySpecial *float64 `toml:"offrail_penalty_special"`
}

// applyTunablesOverlay merges the first discovered tunables file into
// the configuration. TUNABLES_PATH names the file explicitly; without
// it the conventional locations are probed. A missing file is fine, an
// unparsable one fails startup. The merged values still go through
// Validate.
func (c *Config) applyTunablesOverlay() error {
	paths := candidateTunablesPaths()
	if explicit := os.Getenv("TUNABLES_PATH"); explicit != "" {
		paths = []string{explicit}
	}

	for _, path := range paths {
		tun, err := loadTunables(path)
		if err != nil {
			return fmt.Errorf("tunables overlay %s: %w", path, err)
		}
		if tun == nil {
			continue
		}
		c.mergeTunables(tun)
		slog.Info("Tunables overlay applied", "path", path)
		return nil
	}
	return nil
}

func loadTunables(path string) (*Tunables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var tun Tunables
	if err := toml.Unmarshal(data, &tun); err != nil {
		return nil, err
	}
	return &tun, nil
}

func (c *Config) mergeTunables(t *Tunables) {
	if t.DefaultK != nil {
		c.DefaultK = *t.DefaultK
	}
	if t.CandidateTopN != nil {
		c.CandidateTopN = *t.CandidateTopN
	}
	if t.Stage3Candidates != nil {
		c.Stage3Candidates = *t.Stage3Candidates
	}
	if t.AlphaAudio != nil {
		c.AlphaAudio = *t.AlphaAudio
	}
	if t.MaxPerArtistSoft != nil {
		c.MaxPerArtistSoft = *t.MaxPerArtistSoft
	}
	if t.MaxPerArtistFinal != nil {
		c.MaxPerArtistFinal = *t.MaxPerArtistFinal
	}
	if t.PenaltyPerExtra != nil {
		c.PenaltyPerExtra = *t.PenaltyPerExtra
	}
	if t.OffrailPenaltyGeneral != nil {
		c.OffrailPenaltyGeneral = *t.OffrailPenaltyGeneral
	}
	if t.OffrailPenaltySpecial != nil {
		c.OffrailPenaltySpecial = *t.OffrailPenaltySpecial
	}
}

// candidateTunablesPaths returns the conventional overlay locations,
// most specific first.
func candidateTunablesPaths() []string {
	paths := []string{
		"tunables.toml",
		filepath.Join("config", "tunables.toml"),
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "vibecurator", "tunables.toml"))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", "vibecurator", "tunables.toml"))
	}
	paths = append(paths, filepath.Join(string(os.PathSeparator), "etc", "vibecurator", "tunables.toml"))
	return paths
}
