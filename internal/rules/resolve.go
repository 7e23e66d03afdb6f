package rules

// Window is the descriptor the resolver reads. Initial class and title are
// the values the window reported when it was mapped; rules may key on
// either generation of either field.
type Window struct {
	Class        string
	InitialClass string
	Title        string
	InitialTitle string
	Active       bool
	Fullscreen   bool
}

// Source identifies which lookup produced a token.
type Source int

const (
	SourceClass Source = iota
	SourceInitialClass
	SourceTitle
	SourceDefault
	SourceLiteral
)

// Token is the raw icon text resolved for one window, before counting and
// formatting. ActiveVariant reports whether the token came from one of the
// *_active rule lists, in which case the client_active template is not
// applied on top of it.
type Token struct {
	Text          string
	Rule          string
	Source        Source
	ActiveVariant bool
	Captures      Captures
}

// Excludes reports whether the window matches any exclusion pair. Excluded
// windows contribute nothing to their workspace label or count.
func (s *Set) Excludes(w Window) bool {
	for _, rule := range s.Exclude {
		if _, ok := Evaluate(rule.classRe, w.Class); !ok {
			continue
		}
		if _, ok := Evaluate(rule.titleRe, w.Title); ok {
			return true
		}
	}
	return false
}

// Resolve picks the icon text for a window. Lookup precedence: title-scoped
// rules before class rules, initial fields before current ones, active
// variants (for the focused window) before plain ones, then the DEFAULT
// entry, then the literal class name. Resolution always produces a visible
// token; a fully unmatched window surfaces its class name rather than an
// empty label.
func (s *Set) Resolve(w Window) Token {
	if w.Active {
		if tok, ok := s.lookup(w, true); ok {
			return tok
		}
		if tok, ok := s.lookup(w, false); ok {
			return tok
		}
		if tok, ok := s.defaultToken(true); ok {
			return tok
		}
	} else {
		if tok, ok := s.lookup(w, false); ok {
			return tok
		}
	}
	if tok, ok := s.defaultToken(false); ok {
		return tok
	}
	return Token{Text: w.Class, Source: SourceLiteral}
}

func (s *Set) lookup(w Window, active bool) (Token, bool) {
	titles := &s.Titles
	initialClass := s.InitialClass
	class := s.Class
	if active {
		titles = &s.TitlesActive
		initialClass = s.InitialClassActive
		class = s.ClassActive
	}

	for _, scope := range scopeOrder {
		if tok, ok := matchTitleScope(titles[scope], scope, w, active); ok {
			return tok, true
		}
	}
	if tok, ok := matchClassList(initialClass, w.InitialClass, SourceInitialClass, active); ok {
		return tok, true
	}
	if tok, ok := matchClassList(class, w.Class, SourceClass, active); ok {
		return tok, true
	}
	return Token{}, false
}

func scopeFields(scope Scope, w Window) (class, title string) {
	switch scope {
	case ScopeInitialTitleInInitialClass:
		return w.InitialClass, w.InitialTitle
	case ScopeInitialTitleInClass:
		return w.Class, w.InitialTitle
	case ScopeTitleInInitialClass:
		return w.InitialClass, w.Title
	default:
		return w.Class, w.Title
	}
}

// matchTitleScope scans the class groups of one scope in declaration order.
// The first group whose class pattern matches is decisive for this scope:
// when none of its title patterns match, later groups are not consulted.
func matchTitleScope(groups []TitleGroup, scope Scope, w Window, active bool) (Token, bool) {
	class, title := scopeFields(scope, w)
	for _, group := range groups {
		if _, ok := Evaluate(group.re, class); !ok {
			continue
		}
		for _, rule := range group.Titles {
			captures, ok := rule.match(title)
			if rule.isDefault {
				captures, ok = nil, true
			}
			if !ok {
				continue
			}
			return Token{
				Text:          rule.Template,
				Rule:          rule.Pattern,
				Source:        SourceTitle,
				ActiveVariant: active,
				Captures:      captures,
			}, true
		}
		return Token{}, false
	}
	return Token{}, false
}

func matchClassList(rules []ClassRule, class string, source Source, active bool) (Token, bool) {
	for _, rule := range rules {
		if rule.isDefault {
			// The reserved DEFAULT entry only applies once every other
			// rule has been exhausted; the ordered scan skips it.
			continue
		}
		captures, ok := rule.match(class)
		if !ok {
			continue
		}
		return Token{
			Text:          rule.Template,
			Rule:          rule.Pattern,
			Source:        source,
			ActiveVariant: active,
			Captures:      captures,
		}, true
	}
	return Token{}, false
}

func (s *Set) defaultToken(active bool) (Token, bool) {
	list := s.Class
	if active {
		list = s.ClassActive
	}
	for _, rule := range list {
		if rule.isDefault {
			return Token{
				Text:          rule.Template,
				Rule:          rule.Pattern,
				Source:        SourceDefault,
				ActiveVariant: active,
			}, true
		}
	}
	return Token{}, false
}
