package crawler

import "testing"

// TestMatchPattern tests glob matching against URL paths.
func TestMatchPattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"prefix match", "/admin/*", "/admin/dashboard", true},
		{"prefix exact", "/admin/*", "/admin", true},
		{"prefix no match", "/admin/*", "/user/profile", false},
		{"prefix partial no match", "/admin/*", "/administrator", false},
		{"nested prefix", "/admin/*", "/admin/users/edit", true},
		{"extension", "*.pdf", "/docs/file.pdf", true},
		{"extension nested", "*.pdf", "/a/b/c/report.pdf", true},
		{"extension no match", "*.pdf", "/docs/file.txt", false},
		{"exact", "/logout", "/logout", true},
		{"exact no match", "/logout", "/login", false},
		{"single char wildcard", "/api/v?/users", "/api/v1/users", true},
		{"single char wildcard no match", "/api/v?/users", "/api/v10/users", false},
		{"wiki namespace", "/wiki/Special:*", "/wiki/Special:Random", true},
		{"filename glob", "draft-*", "/posts/draft-1", true},
		{"invalid pattern", "[", "/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matchPattern(tt.pattern, tt.path); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
			}
		})
	}
}

// TestLinkFilterAllow tests each filter rule.
func TestLinkFilterAllow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		filter LinkFilter
		link   string
		want   bool
	}{
		{"zero value accepts https", LinkFilter{}, "https://example.com/a", true},
		{"zero value rejects http", LinkFilter{}, "http://example.com/a", false},
		{"explicit schemes", LinkFilter{Schemes: []string{"http", "https"}}, "http://example.com/a", true},
		{"scheme case ignored", LinkFilter{}, "HTTPS://example.com/a", true},
		{"configured scheme case ignored", LinkFilter{Schemes: []string{"HTTPS"}}, "https://example.com/a", true},
		{"mixed-case configured schemes", LinkFilter{Schemes: []string{"Http"}}, "https://example.com/a", false},
		{"no host", LinkFilter{}, "https:///path", false},
		{"relative rejected", LinkFilter{}, "/wiki/Go", false},
		{"domain substring", LinkFilter{DomainContains: "wikipedia"}, "https://en.wikipedia.org/wiki/Go", true},
		{"domain substring miss", LinkFilter{DomainContains: "wikipedia"}, "https://example.org/wiki/Go", false},
		{"domain case ignored", LinkFilter{DomainContains: "Wikipedia"}, "https://en.wikipedia.org/", true},
		{"static asset skipped", LinkFilter{SkipStaticAssets: true}, "https://example.com/app.JS", false},
		{"static asset kept when disabled", LinkFilter{}, "https://example.com/app.js", true},
		{"ignore pattern", LinkFilter{IgnorePatterns: []string{"/admin/*"}}, "https://example.com/admin/x", false},
		{"follow pattern match", LinkFilter{FollowPatterns: []string{"/wiki/*"}}, "https://example.com/wiki/Go", true},
		{"follow pattern miss", LinkFilter{FollowPatterns: []string{"/wiki/*"}}, "https://example.com/w/index.php", false},
		{"root path follows", LinkFilter{FollowPatterns: []string{"/"}}, "https://example.com", true},
		{
			"ignore wins over follow",
			LinkFilter{IgnorePatterns: []string{"/wiki/Talk:*"}, FollowPatterns: []string{"/wiki/*"}},
			"https://example.com/wiki/Talk:Go",
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.filter.Allow(tt.link); got != tt.want {
				t.Errorf("Allow(%q) = %v, want %v", tt.link, got, tt.want)
			}
		})
	}
}

// TestNormalize tests the canonical URL form used for deduplication.
func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"https://Example.COM/Path#frag", "https://example.com/Path"},
		{"HTTPS://example.com/a?b=1", "https://example.com/a?b=1"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com/%zz", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
