package configsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

type Pack struct {
	PackCode string `json:"packCode"`
	Name     string `json:"name"`
	Status   string `json:"status"`
}

type PackVersion struct {
	PackCode      string          `json:"packCode"`
	VersionNo     int             `json:"versionNo"`
	SchemaVersion string          `json:"schemaVersion"`
	ChangeNote    string          `json:"changeNote"`
	CreatedBy     string          `json:"createdBy"`
	ContentJSON   json.RawMessage `json:"contentJson"`
}

type NewVersion struct {
	SchemaVersion string          `json:"schemaVersion"`
	ChangeNote    string          `json:"changeNote"`
	CreatedBy     string          `json:"createdBy"`
	ContentJSON   json.RawMessage `json:"contentJson"`
}

type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues"`
}

type ReleaseBinding struct {
	PackCode        string `json:"packCode"`
	Environment     string `json:"environment"`
	ActiveVersionNo int    `json:"activeVersionNo"`
	ReleasedBy      string `json:"releasedBy"`
}

// ActivePack is the raw runtime view; Pack is not schema-checked.
type ActivePack struct {
	Pack        json.RawMessage `json:"pack"`
	VersionNo   int             `json:"versionNo"`
	Environment string          `json:"environment,omitempty"`
}

// AdminClient drives the governance endpoints used by release automation.
type AdminClient struct {
	t *transport
}

func NewAdmin(opts Options) (*AdminClient, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	return &AdminClient{t: &transport{baseURL: opts.BaseURL, apiKey: opts.APIKey, http: opts.HTTPClient}}, nil
}

func versionPath(packCode string, versionNo int) string {
	return "/packs/" + url.PathEscape(packCode) + "/versions/" + strconv.Itoa(versionNo)
}

func (a *AdminClient) CreatePack(ctx context.Context, packCode, name string) (*Pack, error) {
	var out Pack
	body := map[string]string{"packCode": packCode, "name": name}
	if err := a.t.do(ctx, "POST", "/packs", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AdminClient) CreateVersion(ctx context.Context, packCode string, in NewVersion) (*PackVersion, error) {
	var out PackVersion
	if err := a.t.do(ctx, "POST", "/packs/"+url.PathEscape(packCode)+"/versions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate reports schema issues as a result, not an error. Errors are
// reserved for transport failures and other API answers.
func (a *AdminClient) Validate(ctx context.Context, packCode string, versionNo int) (*ValidationResult, error) {
	var out ValidationResult
	err := a.t.do(ctx, "POST", versionPath(packCode, versionNo)+"/validate", nil, &out)
	if err == nil {
		if out.Issues == nil {
			out.Issues = []string{}
		}
		return &out, nil
	}
	var ae *APIError
	if errors.As(err, &ae) && ae.Code == "validation_failed" {
		return &ValidationResult{Valid: false, Issues: ae.Issues}, nil
	}
	return nil, err
}

func (a *AdminClient) Release(ctx context.Context, packCode string, versionNo int, environment, releasedBy string) (*ReleaseBinding, error) {
	var out ReleaseBinding
	body := map[string]string{"environment": environment, "releasedBy": releasedBy}
	if err := a.t.do(ctx, "POST", versionPath(packCode, versionNo)+"/release", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ActiveVersion returns the pack bound to environment, or an APIError with
// status 404 when nothing is released there.
func (a *AdminClient) ActiveVersion(ctx context.Context, packCode, environment string) (*ActivePack, error) {
	var out ActivePack
	path := "/runtime/packs/" + url.PathEscape(packCode) + "?env=" + url.QueryEscape(environment)
	if err := a.t.do(ctx, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateAndRelease validates the version and releases it only when the
// content is clean.
func (a *AdminClient) ValidateAndRelease(ctx context.Context, packCode string, versionNo int, environment, releasedBy string) (*ReleaseBinding, error) {
	res, err := a.Validate(ctx, packCode, versionNo)
	if err != nil {
		return nil, fmt.Errorf("validate %s:%d: %w", packCode, versionNo, err)
	}
	if !res.Valid {
		return nil, &InvalidPackError{BusinessLine: packCode, Issues: res.Issues}
	}
	b, err := a.Release(ctx, packCode, versionNo, environment, releasedBy)
	if err != nil {
		return nil, fmt.Errorf("release %s:%d to %s: %w", packCode, versionNo, environment, err)
	}
	return b, nil
}
