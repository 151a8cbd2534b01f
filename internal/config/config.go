// Package config provides centralized configuration management for the application.
//
// Inputs are read the way a GitHub Actions step receives them: each action
// input arrives as an INPUT_<NAME> environment variable, and the runner's
// GITHUB_* variables supply the ambient defaults (token, repository, hosts).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/danielolaszy/metaissue/pkg/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// EmptyListSentinel is the list input value meaning "explicitly empty",
	// as opposed to an unset input.
	EmptyListSentinel = "<<EMPTY>>"

	// DefaultBodyRegex splits a body into preamble, checklist block and trailer.
	// The preamble may be empty and blank lines may separate checklist lines.
	DefaultBodyRegex = `^(.*?)((?:^- \[[ xX]\] [^\n]*(?:\n|\z)(?:[ \t\r]*\n)*)+)(.*)$`

	// DefaultBadgeTemplate renders the milestone of an issue; [ISSUE_PATH] is
	// replaced with owner/repo/issues/number.
	DefaultBadgeTemplate = `<img alt="Milestone" src="https://img.shields.io/badge/dynamic/json?label=milestone&query=milestone.title&url=https://api.github.com/repos/[ISSUE_PATH]" align="top">`

	defaultDomain = "github.com"
)

// Configuration keys shared with the cobra flag bindings.
const (
	KeyMetaIssue       = "metaissue"
	KeyLabelsToExclude = "labelstoexclude"
	KeySpecLabels      = "speclabels"
	KeyToken           = "token"
	KeyBodyRegex       = "bodyregex"
	KeyOwner           = "owner"
	KeyRepo            = "repo"
	KeyBadgeTemplate   = "badgetemplate"
	KeyStrict          = "strict"
	KeyDryRun          = "dryrun"
)

// ErrMissingInput is returned when a required input has no value.
var ErrMissingInput = errors.New("missing required input")

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub GitHubConfig
	Inputs Inputs
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
	APIURL string
}

// Inputs holds the raw action inputs before they are resolved.
type Inputs struct {
	MetaIssue       string
	LabelsToExclude string
	SpecLabels      string
	BodyRegex       string
	Owner           string
	Repo            string
	BadgeTemplate   string
	Strict          bool
	DryRun          bool
	EventPath       string
}

// Resolved holds typed values ready for the orchestrator.
type Resolved struct {
	MetaIssue       models.MetaIssue
	Owner           string
	Repo            string
	LabelsToExclude []string
	SpecLabels      []string
	BodyPattern     *regexp.Regexp
	BadgeTemplate   string
}

// LoadConfig initializes and loads configuration from environment variables
// and, when v already carries bound flags or a config file, from those too.
// A nil v creates a fresh viper instance.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	// Local runs may keep inputs in a .env file; the runner never does.
	if os.Getenv("GITHUB_ACTIONS") != "true" {
		_ = godotenv.Load()
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map action inputs
	v.BindEnv(KeyMetaIssue, "INPUT_METAISSUE")
	v.BindEnv(KeyLabelsToExclude, "INPUT_LABELSTOEXCLUDE")
	v.BindEnv(KeySpecLabels, "INPUT_SPECLABELS")
	v.BindEnv(KeyToken, "INPUT_TOKEN", "GITHUB_TOKEN", "GH_TOKEN")
	v.BindEnv(KeyBodyRegex, "INPUT_BODYREGEX")
	v.BindEnv(KeyOwner, "INPUT_OWNER")
	v.BindEnv(KeyRepo, "INPUT_REPO")
	v.BindEnv(KeyBadgeTemplate, "INPUT_BADGETEMPLATE")
	v.BindEnv(KeyStrict, "INPUT_STRICT")
	v.BindEnv(KeyDryRun, "INPUT_DRYRUN")

	// Map runner context
	v.BindEnv("github.repository", "GITHUB_REPOSITORY")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("github.server_url", "GITHUB_SERVER_URL")
	v.BindEnv("github.api_url", "GITHUB_API_URL")
	v.BindEnv("github.event_path", "GITHUB_EVENT_PATH")

	v.SetDefault(KeyBodyRegex, DefaultBodyRegex)
	v.SetDefault(KeyBadgeTemplate, DefaultBadgeTemplate)

	defaultOwner, defaultRepo := splitRepository(v.GetString("github.repository"))
	v.SetDefault(KeyOwner, defaultOwner)
	v.SetDefault(KeyRepo, defaultRepo)

	config := &Config{
		GitHub: GitHubConfig{
			Token:  v.GetString(KeyToken),
			Domain: resolveDomain(v.GetString("github.domain"), v.GetString("github.server_url")),
			APIURL: v.GetString("github.api_url"),
		},
		Inputs: Inputs{
			MetaIssue:       v.GetString(KeyMetaIssue),
			LabelsToExclude: v.GetString(KeyLabelsToExclude),
			SpecLabels:      v.GetString(KeySpecLabels),
			BodyRegex:       v.GetString(KeyBodyRegex),
			Owner:           v.GetString(KeyOwner),
			Repo:            v.GetString(KeyRepo),
			BadgeTemplate:   v.GetString(KeyBadgeTemplate),
			Strict:          v.GetBool(KeyStrict),
			DryRun:          v.GetBool(KeyDryRun),
			EventPath:       v.GetString("github.event_path"),
		},
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" && !config.Inputs.DryRun {
		missingVars = append(missingVars, "INPUT_TOKEN or GITHUB_TOKEN")
	}
	if config.Inputs.MetaIssue == "" && config.Inputs.EventPath == "" {
		missingVars = append(missingVars, "INPUT_METAISSUE or GITHUB_EVENT_PATH")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingInput, missingVars)
	}

	return nil
}

// Resolve turns the raw inputs into typed values.
func (c *Config) Resolve() (*Resolved, error) {
	meta, err := c.loadMetaIssue()
	if err != nil {
		return nil, err
	}

	pattern, err := CompileBodyPattern(c.Inputs.BodyRegex)
	if err != nil {
		return nil, err
	}

	owner, repo, err := ResolveOwnerRepo(meta, c.Inputs.Owner, c.Inputs.Repo)
	if err != nil {
		return nil, err
	}

	badge := c.Inputs.BadgeTemplate
	if badge == "" {
		badge = DefaultBadgeTemplate
	}

	return &Resolved{
		MetaIssue:       meta,
		Owner:           owner,
		Repo:            repo,
		LabelsToExclude: ParseList(c.Inputs.LabelsToExclude),
		SpecLabels:      ParseList(c.Inputs.SpecLabels),
		BodyPattern:     pattern,
		BadgeTemplate:   badge,
	}, nil
}

// loadMetaIssue decodes the metaIssue input, or the issue of the triggering
// event when the input is unset.
func (c *Config) loadMetaIssue() (models.MetaIssue, error) {
	if c.Inputs.MetaIssue != "" {
		return ParseMetaIssue(c.Inputs.MetaIssue)
	}

	payload, err := os.ReadFile(c.Inputs.EventPath)
	if err != nil {
		return models.MetaIssue{}, fmt.Errorf("failed to read event payload: %w", err)
	}
	var event struct {
		Issue *json.RawMessage `json:"issue"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return models.MetaIssue{}, fmt.Errorf("failed to decode event payload: %w", err)
	}
	if event.Issue == nil {
		return models.MetaIssue{}, fmt.Errorf("%w: event payload has no issue", ErrMissingInput)
	}
	return ParseMetaIssue(string(*event.Issue))
}

// ParseList splits a comma separated input. An empty input yields nil,
// EmptyListSentinel yields an empty, non-nil list. Items are kept verbatim.
func ParseList(raw string) []string {
	if raw == "" {
		return nil
	}
	if raw == EmptyListSentinel {
		return []string{}
	}
	return strings.Split(raw, ",")
}

// ParseMetaIssue decodes the JSON representation of a GitHub issue.
func ParseMetaIssue(raw string) (models.MetaIssue, error) {
	var meta models.MetaIssue
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return models.MetaIssue{}, fmt.Errorf("failed to parse meta issue: %w", err)
	}
	return meta, nil
}

// CompileBodyPattern compiles raw with multiline and dot-all semantics.
func CompileBodyPattern(raw string) (*regexp.Regexp, error) {
	pattern, err := regexp.Compile("(?ms)" + raw)
	if err != nil {
		return nil, fmt.Errorf("invalid body regex: %w", err)
	}
	return pattern, nil
}

// ResolveOwnerRepo derives owner and repository from the meta issue's
// repository URL, falling back to the configured owner and repo.
func ResolveOwnerRepo(meta models.MetaIssue, fallbackOwner string, fallbackRepo string) (string, string, error) {
	if owner, repo, ok := meta.OwnerRepo(); ok {
		return owner, repo, nil
	}
	if fallbackOwner == "" || fallbackRepo == "" {
		return "", "", fmt.Errorf("%w: cannot derive owner/repo from repository_url %q", ErrMissingInput, meta.RepositoryURL)
	}
	return fallbackOwner, fallbackRepo, nil
}

// ServerURL returns the web base URL, e.g. https://github.com.
func (g GitHubConfig) ServerURL() string {
	domain := g.Domain
	if domain == "" {
		domain = defaultDomain
	}
	return "https://" + domain
}

// ResolvedAPIURL returns the REST API base URL with a trailing slash.
func (g GitHubConfig) ResolvedAPIURL() string {
	if g.APIURL != "" {
		return strings.TrimSuffix(g.APIURL, "/") + "/"
	}

	domain := g.Domain
	if domain == "" || domain == defaultDomain {
		return "https://api.github.com/"
	}
	return fmt.Sprintf("https://%s/api/v3/", domain)
}

func resolveDomain(domain string, serverURL string) string {
	if domain != "" {
		return domain
	}
	if serverURL != "" {
		if parsed, err := url.Parse(serverURL); err == nil && parsed.Host != "" {
			return parsed.Host
		}
	}
	return defaultDomain
}

func splitRepository(repository string) (string, string) {
	owner, repo, found := strings.Cut(repository, "/")
	if !found {
		return "", ""
	}
	return owner, repo
}
