// Package security classifies inbound requests against known attack signatures.
//
// Classification is a heuristic: it has false positives and false negatives by
// construction and never blocks a request on its own.
package security

import (
	"fmt"
	"net/url"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Signature is one compiled threat pattern.
type Signature struct {
	Name  string
	Class string // sql_injection, script_injection, path_traversal, custom
	re    *regexp.Regexp
}

// Match reports whether s matches the signature.
func (sig Signature) Match(s string) bool {
	return sig.re.MatchString(s)
}

var builtin = []struct{ name, class, expr string }{
	{"sqli-tautology", "sql_injection", `(?i)('|")\s*(or|and)\s+('|")?\w*('|")?\s*(=|like)`},
	{"sqli-union-select", "sql_injection", `(?i)\bunion\b(\s+all)?\s+select\b`},
	{"sqli-stacked", "sql_injection", `(?i);\s*(drop|delete|truncate|alter|insert|update)\s`},
	{"sqli-comment", "sql_injection", `'\s*(--|#|/\*)`},
	{"xss-script-tag", "script_injection", `(?i)<\s*/?\s*script\b`},
	{"xss-js-uri", "script_injection", `(?i)javascript\s*:`},
	{"xss-event-handler", "script_injection", `(?i)\bon(error|load|click|mouseover|focus)\s*=`},
	{"traversal-dotdot", "path_traversal", `\.\.[/\\]`},
	{"traversal-encoded", "path_traversal", `(?i)%2e%2e(%2f|%5c|/|\\)`},
}

// Detector holds the active signature set. It is safe for concurrent use.
type Detector struct {
	signatures []Signature
}

// NewDetector returns a detector with the built-in signatures plus extra ones.
func NewDetector(extra ...Signature) *Detector {
	sigs := make([]Signature, 0, len(builtin)+len(extra))
	for _, b := range builtin {
		sigs = append(sigs, Signature{Name: b.name, Class: b.class, re: regexp.MustCompile(b.expr)})
	}
	sigs = append(sigs, extra...)
	return &Detector{signatures: sigs}
}

// NewSignature compiles a custom signature.
func NewSignature(name, class, expr string) (Signature, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Signature{}, fmt.Errorf("compile signature %q: %w", name, err)
	}
	if class == "" {
		class = "custom"
	}
	return Signature{Name: name, Class: class, re: re}, nil
}

// Signatures returns the active signature set.
func (d *Detector) Signatures() []Signature {
	return d.signatures
}

// Classify reports whether the decoded URL or the body matches any signature.
// The raw URL is checked too so that double-encoded payloads are caught.
// Form-encoded bodies are also checked in decoded form.
func (d *Detector) Classify(rawURL, body string) bool {
	return d.Match(rawURL, body) != nil
}

// Match returns the first signature hit, or nil.
func (d *Detector) Match(rawURL, body string) *Signature {
	candidates := withDecoded(nil, rawURL)
	candidates = withDecoded(candidates, body)
	for i := range d.signatures {
		for _, c := range candidates {
			if c != "" && d.signatures[i].Match(c) {
				return &d.signatures[i]
			}
		}
	}
	return nil
}

// withDecoded appends s and, when it differs, its query-unescaped form.
// Undecodable input is kept as-is.
func withDecoded(candidates []string, s string) []string {
	decoded, err := url.QueryUnescape(s)
	if err != nil || decoded == s {
		return append(candidates, s)
	}
	return append(candidates, decoded, s)
}

type patternFile struct {
	Patterns []struct {
		Name  string `yaml:"name"`
		Class string `yaml:"class"`
		Regex string `yaml:"regex"`
	} `yaml:"patterns"`
}

// LoadSignatures reads extra signatures from a YAML file:
//
//	patterns:
//	  - name: wp-probe
//	    class: recon
//	    regex: '(?i)/wp-(admin|login)'
func LoadSignatures(path string) ([]Signature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern file: %w", err)
	}
	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse pattern file: %w", err)
	}
	sigs := make([]Signature, 0, len(pf.Patterns))
	for i, p := range pf.Patterns {
		if p.Regex == "" {
			return nil, fmt.Errorf("patterns[%d]: empty regex", i)
		}
		sig, err := NewSignature(p.Name, p.Class, p.Regex)
		if err != nil {
			return nil, fmt.Errorf("patterns[%d]: %w", i, err)
		}
		sigs = append(sigs, sig)
	}
	return sigs, nil
}
