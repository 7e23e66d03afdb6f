package rules

import (
	"regexp"
	"strconv"

	"github.com/hyprglyph/hyprglyph/internal/config"
	"github.com/hyprglyph/hyprglyph/internal/util"
)

// ClassRule pairs a compiled class pattern with its template. A rule whose
// pattern failed to compile keeps a nil regexp and never matches.
type ClassRule struct {
	Pattern   string
	Template  string
	re        *regexp.Regexp
	isDefault bool
}

func (r ClassRule) match(subject string) (Captures, bool) {
	return Evaluate(r.re, subject)
}

// TitleGroup nests ordered title rules under one class pattern.
type TitleGroup struct {
	Pattern string
	re      *regexp.Regexp
	Titles  []ClassRule
}

// ExcludeRule hides windows whose class and title both match.
type ExcludeRule struct {
	ClassPattern string
	TitlePattern string
	classRe      *regexp.Regexp
	titleRe      *regexp.Regexp
}

// Scope identifies which descriptor fields a title rule list reads. The
// four combinations of {current, initial} x {class, title} share one lookup
// routine parameterized by scope.
type Scope int

const (
	ScopeInitialTitleInInitialClass Scope = iota
	ScopeInitialTitleInClass
	ScopeTitleInInitialClass
	ScopeTitleInClass
	scopeCount
)

// scopeOrder is the resolution precedence among title scopes: initial
// fields are consulted before current ones so that rules keyed on a
// window's launch identity survive later title churn.
var scopeOrder = [scopeCount]Scope{
	ScopeInitialTitleInInitialClass,
	ScopeInitialTitleInClass,
	ScopeTitleInInitialClass,
	ScopeTitleInClass,
}

// Set is one immutable, compiled generation of the user configuration.
// Reload builds a fresh Set and swaps it atomically; resolutions in flight
// keep reading the generation they started with.
type Set struct {
	Class              []ClassRule
	ClassActive        []ClassRule
	InitialClass       []ClassRule
	InitialClassActive []ClassRule

	Titles       [scopeCount][]TitleGroup
	TitlesActive [scopeCount][]TitleGroup

	Exclude        []ExcludeRule
	WorkspaceNames map[int]string
	Format         config.Format
}

// Build compiles a configuration into an immutable rule set. Invalid
// patterns are logged and degrade to never-matching rules instead of
// failing the whole generation.
func Build(cfg *config.Config, logger *util.Logger) *Set {
	set := &Set{
		Class:              buildClassRules(cfg.Class, logger),
		ClassActive:        buildClassRules(cfg.ClassActive, logger),
		InitialClass:       buildClassRules(cfg.InitialClass, logger),
		InitialClassActive: buildClassRules(cfg.InitialClassActive, logger),
		Exclude:            buildExcludeRules(cfg.Exclude, logger),
		WorkspaceNames:     buildWorkspaceNames(cfg.WorkspacesName, logger),
		Format:             cfg.Format,
	}
	set.Titles[ScopeTitleInClass] = buildTitleGroups(cfg.TitleInClass, logger)
	set.Titles[ScopeTitleInInitialClass] = buildTitleGroups(cfg.TitleInInitialClass, logger)
	set.Titles[ScopeInitialTitleInClass] = buildTitleGroups(cfg.InitialTitleInClass, logger)
	set.Titles[ScopeInitialTitleInInitialClass] = buildTitleGroups(cfg.InitialTitleInInitialClass, logger)
	set.TitlesActive[ScopeTitleInClass] = buildTitleGroups(cfg.TitleInClassActive, logger)
	set.TitlesActive[ScopeTitleInInitialClass] = buildTitleGroups(cfg.TitleInInitialClassActive, logger)
	set.TitlesActive[ScopeInitialTitleInClass] = buildTitleGroups(cfg.InitialTitleInClassActive, logger)
	set.TitlesActive[ScopeInitialTitleInInitialClass] = buildTitleGroups(cfg.InitialTitleInInitialClassActive, logger)
	return set
}

func compileOrWarn(pattern string, logger *util.Logger) *regexp.Regexp {
	re, err := Compile(pattern)
	if err != nil {
		if logger != nil {
			logger.Warnf("rule disabled: %v", err)
		}
		return nil
	}
	return re
}

func buildClassRules(list config.RuleList, logger *util.Logger) []ClassRule {
	if len(list) == 0 {
		return nil
	}
	rules := make([]ClassRule, 0, len(list))
	for _, entry := range list {
		rule := ClassRule{Pattern: entry.Pattern, Template: entry.Value}
		if entry.Pattern == config.DefaultRuleKey {
			rule.isDefault = true
		} else {
			rule.re = compileOrWarn(entry.Pattern, logger)
		}
		rules = append(rules, rule)
	}
	return rules
}

func buildTitleGroups(groups config.TitleRules, logger *util.Logger) []TitleGroup {
	if len(groups) == 0 {
		return nil
	}
	compiled := make([]TitleGroup, 0, len(groups))
	for _, group := range groups {
		tg := TitleGroup{
			Pattern: group.Pattern,
			re:      compileOrWarn(group.Pattern, logger),
			Titles:  buildClassRules(group.Titles, logger),
		}
		compiled = append(compiled, tg)
	}
	return compiled
}

func buildExcludeRules(list config.RuleList, logger *util.Logger) []ExcludeRule {
	if len(list) == 0 {
		return nil
	}
	rules := make([]ExcludeRule, 0, len(list))
	for _, entry := range list {
		rule := ExcludeRule{
			ClassPattern: entry.Pattern,
			TitlePattern: entry.Value,
			classRe:      compileOrWarn(entry.Pattern, logger),
		}
		// An empty title pattern matches only an empty title, never any
		// title. ".*" is the match-everything spelling.
		titlePattern := entry.Value
		if titlePattern == "" {
			titlePattern = "^$"
		}
		rule.titleRe = compileOrWarn(titlePattern, logger)
		rules = append(rules, rule)
	}
	return rules
}

func buildWorkspaceNames(list config.RuleList, logger *util.Logger) map[int]string {
	if len(list) == 0 {
		return nil
	}
	names := make(map[int]string, len(list))
	for _, entry := range list {
		id, err := strconv.Atoi(entry.Pattern)
		if err != nil {
			if logger != nil {
				logger.Warnf("workspaces_name key %q is not an integer id, skipping", entry.Pattern)
			}
			continue
		}
		if _, exists := names[id]; !exists {
			names[id] = entry.Value
		}
	}
	return names
}

// WorkspaceName returns the configured friendly name for a workspace id,
// falling back to the id itself.
func (s *Set) WorkspaceName(id int) string {
	if name, ok := s.WorkspaceNames[id]; ok {
		return name
	}
	return strconv.Itoa(id)
}
