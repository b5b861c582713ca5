// Copyright (C) 2025 skillgate-dev
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package scanner

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/skillgate-dev/skillgate/dtos"
)

// FileClass separates the two threat models of the catalog: instruction
// files can tell an agent to do something dangerous, script files do it
// directly.
type FileClass string

const (
	FileClassMD      FileClass = "md"
	FileClassScripts FileClass = "scripts"
)

// Rule is one entry of the detection catalog. The catalog is configuration
// data: operators add organization-specific rules through a rules file, not
// through code changes. Exactly one of Pattern, Regex or Predicate is set.
type Rule struct {
	ID          string        `mapstructure:"id" yaml:"id" validate:"required"`
	Category    string        `mapstructure:"category" yaml:"category" validate:"required"`
	Name        string        `mapstructure:"name" yaml:"name" validate:"required"`
	Description string        `mapstructure:"description" yaml:"description"`
	Severity    dtos.Severity `mapstructure:"severity" yaml:"severity" validate:"required"`
	AppliesTo   []FileClass   `mapstructure:"appliesTo" yaml:"appliesTo" validate:"required,min=1"`

	// literal substring match
	Pattern string `mapstructure:"pattern" yaml:"pattern,omitempty"`
	// regular expression, matched per line
	Regex string `mapstructure:"regex" yaml:"regex,omitempty"`
	// name of a registered predicate function
	Predicate string `mapstructure:"predicate" yaml:"predicate,omitempty"`

	// PerMatch rules report every occurrence (e.g. credentials), the rest
	// fire at most once per file (e.g. excessive permissions).
	PerMatch bool `mapstructure:"perMatch" yaml:"perMatch"`

	Recommendation string `mapstructure:"recommendation" yaml:"recommendation,omitempty"`
}

func (r Rule) appliesTo(class FileClass) bool {
	for _, c := range r.AppliesTo {
		if c == class {
			return true
		}
	}
	return false
}

type Catalog struct {
	Rules []Rule `mapstructure:"rules" yaml:"rules"`
}

// LoadCatalogFile reads an operator rules file (YAML) and appends its rules
// to the default catalog. Operator rules with an ID already present in the
// default catalog replace the default rule.
func LoadCatalogFile(path string) (Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Catalog{}, fmt.Errorf("could not read rules file: %w", err)
	}

	var overlay Catalog
	if err := v.Unmarshal(&overlay); err != nil {
		return Catalog{}, fmt.Errorf("could not parse rules file: %w", err)
	}

	catalog := DefaultCatalog()
	byID := make(map[string]int, len(catalog.Rules))
	for i, rule := range catalog.Rules {
		byID[rule.ID] = i
	}

	for _, rule := range overlay.Rules {
		if idx, exists := byID[rule.ID]; exists {
			catalog.Rules[idx] = rule
			continue
		}
		catalog.Rules = append(catalog.Rules, rule)
	}

	return catalog, nil
}

// DefaultCatalog returns the built-in detection rules. Kept as a data table
// so the scanner itself stays a generic rule evaluator.
func DefaultCatalog() Catalog {
	return Catalog{Rules: []Rule{
		// Credentials
		{
			ID: "credentials-hardcoded-secret", Category: "Credentials", Name: "Hardcoded credential",
			Description: "A value is assigned to a variable that looks like a password, token or API key.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Regex:          `(?i)(password|passwd|pwd|secret|api[_-]?key|access[_-]?key|auth[_-]?token|token)\s*[:=]\s*["'][^"']{4,}["']`,
			PerMatch:       true,
			Recommendation: "Remove the credential and read it from the environment or a secret store.",
		},
		{
			ID: "credentials-private-key", Category: "Credentials", Name: "Embedded private key",
			Description: "The file embeds a PEM private key block.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Pattern:  "-----BEGIN", PerMatch: true,
			Recommendation: "Never ship private keys inside a skill package.",
		},
		{
			ID: "credentials-aws-key", Category: "Credentials", Name: "AWS access key id",
			Description: "The file contains an AWS access key identifier.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Regex:    `\bAKIA[0-9A-Z]{16}\b`, PerMatch: true,
			Recommendation: "Rotate the key immediately and remove it from the package.",
		},

		// Code Injection
		{
			ID: "code-injection-eval", Category: "Code Injection", Name: "Dynamic code evaluation",
			Description: "eval() executes attacker-controllable strings as code.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\beval\s*\(`, PerMatch: true,
			Recommendation: "Avoid eval; parse the input instead of executing it.",
		},
		{
			ID: "code-injection-exec", Category: "Code Injection", Name: "Dynamic exec call",
			Description: "exec() runs dynamically assembled code or commands.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\bexec\s*\(`, PerMatch: true,
			Recommendation: "Use a fixed command table instead of assembling commands from input.",
		},
		{
			ID: "code-injection-child-process", Category: "Code Injection", Name: "Shell spawn from input",
			Description: "Spawning a shell with interpolated input allows command injection.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `(child_process|subprocess\.(run|call|Popen)|os\.system)\s*\(`, PerMatch: true,
			Recommendation: "Pass arguments as a list and never interpolate untrusted input into shell strings.",
		},

		// Remote Code Execution
		{
			ID: "rce-curl-pipe-shell", Category: "Remote Code Execution", Name: "Download piped to shell",
			Description: "Downloading a remote script and piping it straight into a shell executes arbitrary remote code.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Predicate: "curl-pipe-shell", PerMatch: true,
			Recommendation: "Download, verify and review scripts before executing them.",
		},
		{
			ID: "rce-remote-source", Category: "Remote Code Execution", Name: "Sourcing a remote script",
			Description: "source/. of a URL executes remote content in the current shell.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `(^|\s)(source|\.)\s+https?://`, PerMatch: true,
			Recommendation: "Pin and vendor remote scripts instead of sourcing them live.",
		},

		// SSRF
		{
			ID: "ssrf-metadata-endpoint", Category: "SSRF", Name: "Cloud metadata endpoint access",
			Description: "Requests to the cloud instance metadata service leak credentials of the host.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Pattern:  "169.254.169.254", PerMatch: true,
			Recommendation: "A skill has no business talking to the instance metadata service.",
		},
		{
			ID: "ssrf-internal-host", Category: "SSRF", Name: "Request to internal host",
			Description: "HTTP requests to localhost or private ranges probe the internal network.",
			Severity:    dtos.SeverityMedium, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `https?://(localhost|127\.0\.0\.1|0\.0\.0\.0|10\.\d+\.\d+\.\d+|192\.168\.\d+\.\d+)`, PerMatch: true,
			Recommendation: "Restrict outbound requests to the documented external endpoints.",
		},

		// Path Traversal
		{
			ID: "path-traversal-dotdot", Category: "Path Traversal", Name: "Parent directory traversal",
			Description: "Repeated ../ sequences escape the package directory.",
			Severity:    dtos.SeverityMedium, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\.\./\.\./`, PerMatch: false,
			Recommendation: "Resolve paths against the package root and reject escapes.",
		},
		{
			ID: "path-traversal-sensitive-files", Category: "Path Traversal", Name: "Sensitive system file access",
			Description: "The file references well-known sensitive host paths.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Regex:    `(/etc/passwd|/etc/shadow|\.ssh/id_[a-z0-9]+|\.aws/credentials|\.npmrc)`, PerMatch: true,
			Recommendation: "A skill must not read credentials or account files of the host.",
		},

		// Destructive Operations
		{
			ID: "destructive-rm-rf", Category: "Destructive Operations", Name: "Recursive forced delete",
			Description: "rm -rf against a broad path can destroy the host filesystem.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Regex:    `\brm\s+(-[a-zA-Z]*r[a-zA-Z]*f|-[a-zA-Z]*f[a-zA-Z]*r)\b`, PerMatch: true,
			Recommendation: "Delete only files the skill created, with explicit paths.",
		},
		{
			ID: "destructive-disk-write", Category: "Destructive Operations", Name: "Raw disk operation",
			Description: "dd/mkfs against block devices overwrites disks.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\b(dd\s+if=|mkfs(\.[a-z0-9]+)?\s|>\s*/dev/sd)`, PerMatch: true,
			Recommendation: "Skills never need raw disk access.",
		},
		{
			ID: "destructive-fork-bomb", Category: "Destructive Operations", Name: "Fork bomb",
			Description: "The classic fork bomb exhausts the process table.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassScripts},
			Pattern:  ":(){ :|:& };:", PerMatch: false,
			Recommendation: "Remove it.",
		},

		// Persistence
		{
			ID: "persistence-cron", Category: "Persistence", Name: "Cron job installation",
			Description: "Installing cron entries keeps code running after the skill finished.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Regex:    `\b(crontab\s|/etc/cron)`, PerMatch: true,
			Recommendation: "Skills must not install scheduled tasks.",
		},
		{
			ID: "persistence-shell-profile", Category: "Persistence", Name: "Shell profile modification",
			Description: "Appending to shell startup files executes code on every future login.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `>>\s*~?/?\.((bash|zsh)rc|profile|bash_profile)`, PerMatch: true,
			Recommendation: "Do not modify the user's shell startup files.",
		},
		{
			ID: "persistence-systemd", Category: "Persistence", Name: "Service installation",
			Description: "Enabling system services persists beyond the skill run.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\b(systemctl\s+(enable|daemon-reload)|launchctl\s+load)\b`, PerMatch: true,
			Recommendation: "Skills must not install system services.",
		},

		// Excessive Permissions
		{
			ID: "permissions-chmod-777", Category: "Excessive Permissions", Name: "World-writable permissions",
			Description: "chmod 777 makes files writable for every local user.",
			Severity:    dtos.SeverityMedium, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\bchmod\s+(-[a-zA-Z]+\s+)?0?777\b`, PerMatch: false,
			Recommendation: "Use the narrowest permission set that works.",
		},
		{
			ID: "permissions-sudo", Category: "Excessive Permissions", Name: "Privilege escalation",
			Description: "sudo/su escalate to root.",
			Severity:    dtos.SeverityMedium, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Regex:    `\bsudo\s`, PerMatch: false,
			Recommendation: "Skills run unprivileged; drop the escalation.",
		},
		{
			ID: "permissions-setuid", Category: "Excessive Permissions", Name: "setuid bit",
			Description: "Setting the setuid bit grants permanent elevated execution.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\bchmod\s+(u\+s|[0-7]?[4567][0-7]{3})\b`, PerMatch: false,
			Recommendation: "Never ship setuid binaries or scripts.",
		},

		// Security Bypass
		{
			ID: "bypass-tls-verification", Category: "Security Bypass", Name: "TLS verification disabled",
			Description: "Disabling certificate verification enables man-in-the-middle attacks.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `(curl\s+[^\n]*(-k\b|--insecure)|wget\s+[^\n]*--no-check-certificate|NODE_TLS_REJECT_UNAUTHORIZED\s*=\s*["']?0|verify\s*=\s*False|InsecureSkipVerify\s*:\s*true)`, PerMatch: true,
			Recommendation: "Keep TLS verification enabled.",
		},
		{
			ID: "bypass-history", Category: "Security Bypass", Name: "Shell history tampering",
			Description: "Disabling or wiping shell history hides what was executed.",
			Severity:    dtos.SeverityMedium, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\b(unset\s+HISTFILE|history\s+-c|HISTSIZE\s*=\s*0)\b`, PerMatch: false,
			Recommendation: "Remove the history manipulation.",
		},
		{
			ID: "bypass-firewall", Category: "Security Bypass", Name: "Firewall manipulation",
			Description: "Disabling the firewall or flushing rules weakens the host.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\b(iptables\s+-F|ufw\s+disable|setenforce\s+0)\b`, PerMatch: true,
			Recommendation: "Skills must not touch host security controls.",
		},

		// Obfuscation
		{
			ID: "obfuscation-base64-exec", Category: "Obfuscation", Name: "Decoded payload execution",
			Description: "base64-decoding a blob and executing it hides the real payload from review.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Predicate: "base64-decode-exec", PerMatch: true,
			Recommendation: "Ship readable source instead of encoded blobs.",
		},
		{
			ID: "obfuscation-hex-escapes", Category: "Obfuscation", Name: "Long escape sequence string",
			Description: "Long runs of hex/unicode escapes usually hide a payload.",
			Severity:    dtos.SeverityMedium, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `(\\x[0-9a-fA-F]{2}){8,}`, PerMatch: false,
			Recommendation: "Replace the escaped blob with readable source.",
		},

		// Environment Access
		{
			ID: "env-dump", Category: "Environment Access", Name: "Environment dump",
			Description: "Dumping the whole environment exposes every secret the host carries.",
			Severity:    dtos.SeverityMedium, AppliesTo: []FileClass{FileClassScripts},
			Regex:    `\b(printenv\b|env\s*$|env\s*\||os\.environ\b|process\.env\b)`, PerMatch: false,
			Recommendation: "Read only the specific variables the skill documents.",
		},
		{
			ID: "env-exfiltration", Category: "Environment Access", Name: "Environment exfiltration",
			Description: "Sending environment variables to a remote endpoint leaks secrets.",
			Severity:    dtos.SeverityCritical, AppliesTo: []FileClass{FileClassMD, FileClassScripts},
			Predicate: "env-to-network", PerMatch: true,
			Recommendation: "Remove the exfiltration; secrets never leave the host.",
		},

		// MD-specific: instruction files steering an agent
		{
			ID: "md-prompt-injection", Category: "Security Bypass", Name: "Agent instruction override",
			Description: "The instructions try to override the agent's prior guardrails.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassMD},
			Regex:    `(?i)(ignore (all|any|previous|prior) (instructions|rules)|disregard (the|your) (system|previous) prompt)`, PerMatch: true,
			Recommendation: "Remove the override; instructions must stay within the skill's scope.",
		},
		{
			ID: "md-secret-solicitation", Category: "Credentials", Name: "Instruction to collect secrets",
			Description: "The instructions ask the agent to collect credentials or tokens.",
			Severity:    dtos.SeverityHigh, AppliesTo: []FileClass{FileClassMD},
			Regex:    `(?i)(send|read|collect|upload) (the |your |all )?(passwords?|credentials?|secrets?|tokens?|api keys?)`, PerMatch: true,
			Recommendation: "A skill never needs the user's credentials.",
		},
	}}
}
