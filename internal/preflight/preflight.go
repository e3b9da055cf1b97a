package preflight

import (
	"innario/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes all preflight checks for the given config. Every check is
// local; none of them touches the network.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckCatalog(cfg.Catalog.Path))
	results = append(results, CheckJWTSecret(cfg))
	results = append(results, CheckDatabase(cfg))
	results = append(results, CheckInstanceLock(cfg))

	return results
}
