// Package cssscope rewrites a widget's stylesheet so every rule only
// applies inside the widget's root element.
package cssscope

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/google/uuid"
)

// Prefix starts every generated scope id. It keeps ids valid CSS
// identifiers (never starting with a digit).
const Prefix = "component_"

// NewID returns a fresh scope id such as "component_9f1c2ab04e7d".
func NewID() string {
	return Prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// rule-embedding at-rules whose children are ordinary style rules.
// @keyframes and @font-face bodies are left alone.
var nesting = map[string]bool{
	"media":    true,
	"supports": true,
	"document": true,
}

// Scope prefixes each selector in source with "#id ". Selector lists are
// prefixed entry by entry; :scope and :host address the root itself.
func Scope(source, id string) (string, error) {
	sheet, err := parser.Parse(source)
	if err != nil {
		return "", fmt.Errorf("cssscope: parse: %w", err)
	}
	scopeRules(sheet.Rules, "#"+id)
	return sheet.String(), nil
}

func scopeRules(rules []*css.Rule, scope string) {
	for _, rule := range rules {
		switch rule.Kind {
		case css.QualifiedRule:
			for i, sel := range rule.Selectors {
				rule.Selectors[i] = scopeSelector(sel, scope)
			}
			rule.Prelude = strings.Join(rule.Selectors, ", ")
		case css.AtRule:
			name := strings.ToLower(strings.TrimPrefix(rule.Name, "@"))
			if nesting[name] {
				scopeRules(rule.Rules, scope)
			}
		}
	}
}

func scopeSelector(sel, scope string) string {
	sel = strings.TrimSpace(sel)
	for _, self := range []string{":scope", ":host"} {
		if sel == self {
			return scope
		}
		if strings.HasPrefix(sel, self) {
			return scope + sel[len(self):]
		}
	}
	if scopedBy(sel, scope) {
		return sel
	}
	return scope + " " + sel
}

// scopedBy reports whether sel already starts with the whole scope
// selector, so "#w .a" matches "#w" but "#w123 .a" does not.
func scopedBy(sel, scope string) bool {
	if !strings.HasPrefix(sel, scope) {
		return false
	}
	rest := sel[len(scope):]
	return rest == "" || strings.ContainsRune(" \t\n.:[>+~#", rune(rest[0]))
}
