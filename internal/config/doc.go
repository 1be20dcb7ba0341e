// Package config provides the crawl configuration, its defaults and
// validation, and the optional .stripecrawl YAML file with per-host
// settings.
package config
