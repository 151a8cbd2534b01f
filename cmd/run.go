package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/danielolaszy/metaissue/internal/config"
	"github.com/danielolaszy/metaissue/internal/fanout"
	"github.com/danielolaszy/metaissue/internal/github"
	"github.com/danielolaszy/metaissue/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd performs one fan-out of the configured meta issue.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create sub-issues from a meta issue checklist",
	Long: `Create sub-issues from the checklist of a meta issue.

Every checked line of the checklist names a repository owned by the meta
issue's owner. A sub-issue titled "[META <number>] <title>" is created in each
of them. A checked line starting with "spec" requests one additional spec
issue in the meta issue's own repository.

Once all issues have been attempted, the checklist is removed from the meta
issue body and replaced by an overview section linking the created issues.
Repositories that fail are skipped and left out of the overview.

Inputs (flag, environment):
  --meta-issue         INPUT_METAISSUE        issue JSON, defaults to the event's issue
  --labels-to-exclude  INPUT_LABELSTOEXCLUDE  comma list, <<EMPTY>> for none
  --spec-labels        INPUT_SPECLABELS       comma list, <<EMPTY>> for none
  --token              INPUT_TOKEN            defaults to GITHUB_TOKEN
  --body-regex         INPUT_BODYREGEX        three groups: preamble, checklist, trailer

Example:
  INPUT_METAISSUE="$(gh api repos/acme/meta/issues/5)" metaissue run --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newViper(cmd)
		if err != nil {
			return err
		}
		return runFanout(cmd.Context(), v, cmd.OutOrStdout())
	},
}

func init() {
	runCmd.Flags().String("meta-issue", "", "Meta issue as GitHub issue JSON")
	runCmd.Flags().String("labels-to-exclude", "", "Comma separated meta issue labels not copied to sub-issues")
	runCmd.Flags().String("spec-labels", "", "Comma separated labels added to the spec issue")
	runCmd.Flags().String("token", "", "GitHub token")
	runCmd.Flags().String("body-regex", "", "Pattern splitting the body into preamble, checklist and trailer")
	runCmd.Flags().String("owner", "", "Owner used when the meta issue has no repository_url")
	runCmd.Flags().String("repo", "", "Repository used when the meta issue has no repository_url")
	runCmd.Flags().String("badge-template", "", "Badge markdown appended to overview links; [ISSUE_PATH] is replaced")
	runCmd.Flags().Bool("strict", false, "Fail instead of skipping when inputs or the checklist cannot be read")
	runCmd.Flags().Bool("dry-run", false, "Log planned calls and print the new meta issue body without calling GitHub")
}

// flagKeys maps run flags to configuration keys.
var flagKeys = map[string]string{
	"meta-issue":        config.KeyMetaIssue,
	"labels-to-exclude": config.KeyLabelsToExclude,
	"spec-labels":       config.KeySpecLabels,
	"token":             config.KeyToken,
	"body-regex":        config.KeyBodyRegex,
	"owner":             config.KeyOwner,
	"repo":              config.KeyRepo,
	"badge-template":    config.KeyBadgeTemplate,
	"strict":            config.KeyStrict,
	"dry-run":           config.KeyDryRun,
}

// newViper binds the command's flags and optional config file into a fresh
// viper instance.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	configFile, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// runFanout resolves inputs and runs the orchestrator. Input problems end the
// run without error unless strict mode is on.
func runFanout(ctx context.Context, v *viper.Viper, out io.Writer) error {
	cfg, err := config.LoadConfig(v)
	if err != nil {
		return skipOrFail(v.GetBool(config.KeyStrict), "failed to load configuration", err)
	}

	resolved, err := cfg.Resolve()
	if err != nil {
		return skipOrFail(cfg.Inputs.Strict, "failed to resolve inputs", err)
	}

	logging.Info("resolved inputs",
		"meta_issue", resolved.MetaIssue.Number,
		"owner", resolved.Owner,
		"repo", resolved.Repo,
		"labels_to_exclude", resolved.LabelsToExclude,
		"spec_labels", resolved.SpecLabels,
		"dry_run", cfg.Inputs.DryRun)

	var service fanout.IssueService
	dryRun := &fanout.DryRunService{}
	if cfg.Inputs.DryRun {
		service = dryRun
	} else {
		client, err := github.NewClient(ctx, cfg.GitHub)
		if err != nil {
			return skipOrFail(cfg.Inputs.Strict, "failed to initialize github client", err)
		}
		service = client
	}

	orchestrator := fanout.New(service, resolved, cfg.GitHub.ServerURL(), cfg.Inputs.Strict)
	report, err := orchestrator.Run(ctx, resolved.MetaIssue)
	if err != nil {
		return err
	}

	if cfg.Inputs.DryRun && !report.Skipped {
		fmt.Fprintln(out, dryRun.Body)
	}
	return nil
}

func skipOrFail(strict bool, msg string, err error) error {
	if strict {
		return fmt.Errorf("%s: %w", msg, err)
	}
	logging.Error(msg+", skipping execution", "error", err)
	return nil
}
