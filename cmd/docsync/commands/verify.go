package commands

import (
	"fmt"
	"os"

	"github.com/countrystatecity/docsync/internal/config"
	"github.com/countrystatecity/docsync/internal/docverify"
	"github.com/countrystatecity/docsync/internal/errors"
)

// VerifyCmd implements the 'verify' command.
type VerifyCmd struct {
	Quiet bool `short:"q" help:"Only show errors, suppress warnings"`
}

func (v *VerifyCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}

	failed := false
	checks := []struct {
		path   string
		verify func([]byte) []docverify.Issue
	}{
		{cfg.Docs.ChangelogPath, docverify.VerifyChangelog},
		{cfg.Docs.OverviewPath, docverify.VerifyOverview},
	}

	for _, check := range checks {
		content, err := os.ReadFile(check.path)
		if err != nil {
			return errors.ReadFailed(check.path, err)
		}

		issues := check.verify(content)
		for _, issue := range issues {
			if v.Quiet && issue.Severity != docverify.SeverityError {
				continue
			}
			fmt.Printf("%s: %s\n", check.path, issue)
		}
		if docverify.HasErrors(issues) {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("verification failed")
	}
	fmt.Println("documents verified")
	return nil
}
