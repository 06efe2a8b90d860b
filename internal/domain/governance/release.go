package governance

import "encoding/json"

type Environment string

const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

var Environments = []Environment{EnvDev, EnvStaging, EnvProd}

func (e Environment) Valid() bool {
	for _, env := range Environments {
		if env == e {
			return true
		}
	}
	return false
}

// ReleaseBinding points an environment at the live version of a pack.
// There is at most one per (PackCode, Environment); a new release replaces it.
type ReleaseBinding struct {
	PackCode        string      `json:"packCode"`
	Environment     Environment `json:"environment"`
	ActiveVersionNo int         `json:"activeVersionNo"`
	ReleasedBy      string      `json:"releasedBy"`
}

type ReleaseRequest struct {
	PackCode    string
	VersionNo   int
	Environment Environment
	ReleasedBy  string
}

// ValidationResult is what the content validator reports for a version.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

// ActivePack is the runtime view of a released version.
type ActivePack struct {
	Pack        json.RawMessage `json:"pack"`
	VersionNo   int             `json:"versionNo"`
	Environment Environment     `json:"environment,omitempty"`
}
