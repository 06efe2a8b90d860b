// Package domainpack defines the content schema of a domain pack and the
// validator the config center runs before release.
package domainpack

// DomainPack is the decoded content of a pack version. Pointer fields are
// required; a missing value is reported rather than read as zero.
type DomainPack struct {
	ID            string        `json:"id" validate:"required"`
	Version       string        `json:"version" validate:"required"`
	BusinessLine  string        `json:"businessLine" validate:"required"`
	RoleProfiles  []RoleProfile `json:"roleProfiles" validate:"required,dive"`
	MetricProxies []MetricProxy `json:"metricProxies" validate:"required,dive"`
	ScorePolicies []ScorePolicy `json:"scorePolicies" validate:"required,dive"`
}

type RoleProfile struct {
	RoleCode string  `json:"roleCode" validate:"required"`
	Skills   []Skill `json:"skills" validate:"required,dive"`
}

type Skill struct {
	Code          string   `json:"code" validate:"required"`
	Weight        *float64 `json:"weight" validate:"required,gte=0,lte=1"`
	RequiredLevel *int     `json:"requiredLevel" validate:"required,gte=1,lte=5"`
}

type MetricProxy struct {
	MetricCode  string `json:"metricCode" validate:"required"`
	Definition  string `json:"definition" validate:"required"`
	Source      string `json:"source" validate:"required"`
	RefreshCron string `json:"refreshCron" validate:"required"`
}

type ScorePolicy struct {
	ScoreType  string      `json:"scoreType" validate:"required"`
	Formula    string      `json:"formula" validate:"required"`
	Thresholds *Thresholds `json:"thresholds" validate:"required"`
}

type Thresholds struct {
	High   *float64 `json:"high" validate:"required,gte=0,lte=1"`
	Medium *float64 `json:"medium" validate:"required,gte=0,lte=1"`
}
