package config

import (
	"maps"
	"strings"
)

// SiteConfig holds settings for one host, or the defaults for all hosts.
type SiteConfig struct {
	// Cookie is sent with every request.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent with every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// DomainContains restricts followed links to hosts containing it.
	DomainContains string `yaml:"domainContains,omitempty"`

	// IgnorePatterns are glob patterns matched against the URL path;
	// matching links are skipped.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`

	// FollowPatterns, when set, limit the crawl to paths matching one of them.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`

	// Scope is a CSS selector limiting link extraction to part of the
	// page, e.g. "#bodyContent".
	Scope string `yaml:"scope,omitempty"`

	// ResolveRelative overrides whether relative hrefs are followed.
	// Nil leaves the command-line setting in place.
	ResolveRelative *bool `yaml:"resolveRelative,omitempty"`
}

// File represents the structure of the .stripecrawl configuration file.
type File struct {
	// Sites maps a host (e.g. "en.wikipedia.org") to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every host unless a site entry overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for host, merging the site entry
// over the defaults. Host matching is case-insensitive.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if cf.Defaults.Headers != nil {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	site, ok := cf.Sites[host]
	if !ok {
		site, ok = cf.lookupFold(host)
	}
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	if site.DomainContains != "" {
		result.DomainContains = site.DomainContains
	}
	if len(site.IgnorePatterns) > 0 {
		result.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		result.FollowPatterns = site.FollowPatterns
	}
	if site.Scope != "" {
		result.Scope = site.Scope
	}
	if site.ResolveRelative != nil {
		result.ResolveRelative = site.ResolveRelative
	}

	return result
}

func (cf *File) lookupFold(host string) (SiteConfig, bool) {
	for k, v := range cf.Sites {
		if strings.EqualFold(k, host) {
			return v, true
		}
	}
	return SiteConfig{}, false
}
