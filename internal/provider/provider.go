// Package provider resolves carrier tokens against the canonical provider
// directory using a case-insensitive, alias-aware lookup table.
package provider

import (
	"context"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/aerocell/towersync/internal/db"
	"github.com/aerocell/towersync/internal/model"
)

// SeedNames is the canonical provider directory seeded by `providers seed`.
var SeedNames = []string{
	"Verizon",
	"AT&T",
	"T-Mobile",
	"Sprint",
	"US Cellular",
	"Dish",
	"AMT",
	"CCI",
	"Cellular One",
}

// AliasTable maps a canonical provider name to the alternate spellings that
// should resolve to it. Canonical names themselves always resolve.
type AliasTable map[string][]string

// DefaultAliases covers the spellings seen across the known lead layouts.
func DefaultAliases() AliasTable {
	return AliasTable{
		"AT&T":     {"att"},
		"AMT":      {"american tower"},
		"CCI":      {"crown castle"},
		"Dish":     {"dish network"},
		"T-Mobile": {"tmobile"},
	}
}

// LoadAliasFile reads an alias table from a YAML file and merges it over the
// defaults. The file shape is:
//
//	aliases:
//	  AMT: ["american tower", "americantower"]
func LoadAliasFile(path string) (AliasTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "provider: read alias file %s", path)
	}

	var wrapper struct {
		Aliases AliasTable `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "provider: parse alias file")
	}

	merged := DefaultAliases()
	for canonical, aliases := range wrapper.Aliases {
		merged[canonical] = append(merged[canonical], aliases...)
	}
	return merged, nil
}

// Resolver maps carrier tokens to provider ids. The table is loaded once per
// run from the providers table plus the alias table.
type Resolver struct {
	byKey map[string]int64
}

// NewResolver loads the provider directory and builds the lookup table.
// Aliases pointing at a canonical name not present in the directory are
// silently ignored.
func NewResolver(ctx context.Context, pool db.Pool, aliases AliasTable) (*Resolver, error) {
	rows, err := pool.Query(ctx, `SELECT id, name FROM providers`)
	if err != nil {
		return nil, eris.Wrap(err, "provider: load directory")
	}
	defer rows.Close()

	byKey := make(map[string]int64)
	for rows.Next() {
		var p model.Provider
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, eris.Wrap(err, "provider: scan provider")
		}
		byKey[strings.ToLower(p.Name)] = p.ID
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "provider: iterate directory")
	}

	for canonical, alts := range aliases {
		id, ok := byKey[strings.ToLower(canonical)]
		if !ok {
			continue
		}
		for _, alt := range alts {
			byKey[strings.ToLower(alt)] = id
		}
	}

	return &Resolver{byKey: byKey}, nil
}

// Resolve looks up a carrier token. Unresolved tokens are the caller's
// warning to log; no provider is ever created implicitly.
func (r *Resolver) Resolve(token string) (int64, bool) {
	id, ok := r.byKey[strings.ToLower(strings.TrimSpace(token))]
	return id, ok
}

// Seed inserts the canonical provider directory, ignoring names already
// present.
func Seed(ctx context.Context, pool db.Pool, names []string) (int64, error) {
	var created int64
	for _, name := range names {
		tag, err := pool.Exec(ctx,
			`INSERT INTO providers (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if err != nil {
			return created, eris.Wrapf(err, "provider: seed %s", name)
		}
		created += tag.RowsAffected()
	}
	return created, nil
}
