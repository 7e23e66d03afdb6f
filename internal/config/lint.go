package config

import (
	"fmt"
	"regexp"
	"strconv"
)

// LintError describes a single configuration issue with its document path.
type LintError struct {
	Path    string
	Message string
}

func (e LintError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Lint reports non-fatal configuration issues: rules that reference invalid
// regular expressions (they compile to never-matching rules) and workspace
// name keys that are not integer ids.
func (c *Config) Lint() []LintError {
	var errs []LintError

	lintList := func(section string, list RuleList) {
		for i, entry := range list {
			if entry.Pattern == DefaultRuleKey && section != "exclude" {
				continue
			}
			if _, err := regexp.Compile(entry.Pattern); err != nil {
				errs = append(errs, LintError{
					Path:    fmt.Sprintf("%s[%d] %q", section, i, entry.Pattern),
					Message: fmt.Sprintf("invalid regex: %v", err),
				})
			}
		}
	}
	lintTitles := func(section string, rules TitleRules) {
		for i, group := range rules {
			if _, err := regexp.Compile(group.Pattern); err != nil {
				errs = append(errs, LintError{
					Path:    fmt.Sprintf("%s[%d] %q", section, i, group.Pattern),
					Message: fmt.Sprintf("invalid regex: %v", err),
				})
			}
			for j, entry := range group.Titles {
				if _, err := regexp.Compile(entry.Pattern); err != nil {
					errs = append(errs, LintError{
						Path:    fmt.Sprintf("%s[%d].titles[%d] %q", section, i, j, entry.Pattern),
						Message: fmt.Sprintf("invalid regex: %v", err),
					})
				}
			}
		}
	}

	lintList("class", c.Class)
	lintList("class_active", c.ClassActive)
	lintList("initial_class", c.InitialClass)
	lintList("initial_class_active", c.InitialClassActive)
	lintTitles("title_in_class", c.TitleInClass)
	lintTitles("title_in_class_active", c.TitleInClassActive)
	lintTitles("title_in_initial_class", c.TitleInInitialClass)
	lintTitles("title_in_initial_class_active", c.TitleInInitialClassActive)
	lintTitles("initial_title_in_class", c.InitialTitleInClass)
	lintTitles("initial_title_in_class_active", c.InitialTitleInClassActive)
	lintTitles("initial_title_in_initial_class", c.InitialTitleInInitialClass)
	lintTitles("initial_title_in_initial_class_active", c.InitialTitleInInitialClassActive)
	lintList("exclude", c.Exclude)

	for i, entry := range c.Exclude {
		if entry.Value == "" {
			continue
		}
		if _, err := regexp.Compile(entry.Value); err != nil {
			errs = append(errs, LintError{
				Path:    fmt.Sprintf("exclude[%d].title %q", i, entry.Value),
				Message: fmt.Sprintf("invalid regex: %v", err),
			})
		}
	}

	for i, entry := range c.WorkspacesName {
		if _, err := strconv.Atoi(entry.Pattern); err != nil {
			errs = append(errs, LintError{
				Path:    fmt.Sprintf("workspaces_name[%d] %q", i, entry.Pattern),
				Message: "key must be an integer workspace id",
			})
		}
	}

	return errs
}

// LintFile loads and lints a configuration file in one step.
func LintFile(path string) ([]LintError, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Lint(), nil
}
