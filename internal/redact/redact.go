package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

type rule struct {
	kind string
	re   *regexp.Regexp
}

// rules run in order; specific token shapes come before the generic
// assignment patterns so the kind reported is the most precise one.
var rules = []rule{
	{"private_key", regexp.MustCompile(`-----BEGIN\s+(?:RSA\s+|EC\s+|OPENSSH\s+)?PRIVATE KEY-----`)},
	{"aws_access_key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"aws_secret_key", regexp.MustCompile(`(?i)aws[_-]?secret[_-]?access[_-]?key\s*[:=]\s*["']?[A-Za-z0-9/+=]{40}["']?`)},
	{"anthropic_key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai_key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
	{"github_token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack_token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"bearer_token", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"api_key", regexp.MustCompile(`(?i)(?:api[_-]?key|apikey|api[_-]?secret)\s*[:=]\s*["']?[A-Za-z0-9/+=_-]{20,}["']?`)},
	{"password", regexp.MustCompile(`(?i)(?:secret|token|password|passwd|credential)\s*[:=]\s*["'][^"']{8,}["']`)},
	{"hex_secret", regexp.MustCompile(`(?i)(?:key|secret|token)\s*[:=]\s*["']?[0-9a-f]{32,}["']?`)},
}

// Secrets replaces detected secrets in text with [REDACTED] and reports how
// many matches were replaced.
func Secrets(text string) (string, int) {
	out, kinds := scrub(text)
	n := 0
	for _, c := range kinds {
		n += c
	}
	return out, n
}

func scrub(text string) (string, map[string]int) {
	kinds := map[string]int{}
	for _, r := range rules {
		text = r.re.ReplaceAllStringFunc(text, func(string) string {
			kinds[r.kind]++
			return placeholder
		})
	}
	return text, kinds
}

// ShouldRedactPath reports whether path matches any pattern. Patterns use
// filepath.Match syntax; a leading "**/" matches at any directory depth.
func ShouldRedactPath(path string, patterns []string) bool {
	path = filepath.ToSlash(filepath.Clean(path))
	for _, pattern := range patterns {
		if matchPath(pattern, path) {
			return true
		}
	}
	return false
}

func matchPath(pattern, path string) bool {
	rest, anyDepth := strings.CutPrefix(pattern, "**/")
	if !anyDepth {
		ok, _ := filepath.Match(pattern, path)
		return ok
	}
	// Try the pattern against every suffix that starts at a path segment.
	for {
		if ok, _ := filepath.Match(rest, path); ok {
			return true
		}
		i := strings.IndexByte(path, '/')
		if i < 0 {
			return false
		}
		path = path[i+1:]
	}
}

// Policy controls what is stripped from source before it leaves the machine.
type Policy struct {
	Secrets bool
	Paths   []string
}

// Result is the outcome of applying a Policy to one file.
type Result struct {
	Code    string
	Blocked bool
	// Kinds counts replacements per secret kind, e.g. "aws_access_key".
	Kinds map[string]int
}

// Count returns the total number of replacements.
func (r Result) Count() int {
	n := 0
	for _, c := range r.Kinds {
		n += c
	}
	return n
}

// Apply returns the code to send for path. A path matching one of the
// policy patterns is Blocked and its code must not be sent at all.
func (p Policy) Apply(path, code string) Result {
	if ShouldRedactPath(path, p.Paths) {
		return Result{Blocked: true}
	}
	if !p.Secrets {
		return Result{Code: code}
	}
	out, kinds := scrub(code)
	return Result{Code: out, Kinds: kinds}
}
