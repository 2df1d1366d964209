package domain

import "strings"

// DefaultPublicPrefixes are tenant-less routes: they never trigger resolution.
var DefaultPublicPrefixes = []string{
	"login", "register", "signup", "forgot-password", "reset-password",
	"pricing", "about", "contact", "terms", "privacy", "features", "help",
}

// DefaultReservedSegments are application routes that would otherwise be
// mistaken for a bare tenant slug.
var DefaultReservedSegments = []string{
	"app", "api", "auth", "logout", "dashboard", "settings", "admin", "profile",
	"agenda", "appointments", "barbers", "services", "comments", "reports",
	"booking", "not-found", "404",
}

// RouteMatcher derives the tenant slug from a URL path. Two forms are
// recognised: the prefixed "/app/{slug}/..." and the bare "/{slug}". The
// reserved list is checked before a bare segment is accepted.
type RouteMatcher struct {
	AppPrefix      string
	PublicPrefixes []string
	Reserved       []string
	// StrictPrefix accepts only the prefixed form.
	StrictPrefix bool
}

// DefaultRouteMatcher accepts both route forms.
func DefaultRouteMatcher() RouteMatcher {
	return RouteMatcher{
		AppPrefix:      "app",
		PublicPrefixes: DefaultPublicPrefixes,
		Reserved:       DefaultReservedSegments,
	}
}

// Match returns the slug addressed by path, or ok=false for tenant-less routes.
func (m RouteMatcher) Match(path string) (slug string, ok bool) {
	segs := segments(path)
	if len(segs) == 0 {
		return "", false
	}

	if m.AppPrefix != "" && segs[0] == m.AppPrefix {
		if len(segs) < 2 || m.isReserved(segs[1]) {
			return "", false
		}
		return segs[1], true
	}

	if m.isPublic(segs[0]) || m.StrictPrefix {
		return "", false
	}

	if len(segs) != 1 || m.isReserved(segs[0]) {
		return "", false
	}
	return segs[0], true
}

func (m RouteMatcher) isPublic(seg string) bool {
	return contains(m.PublicPrefixes, seg)
}

func (m RouteMatcher) isReserved(seg string) bool {
	return contains(m.Reserved, seg)
}

func contains(list []string, seg string) bool {
	seg = strings.ToLower(seg)
	for _, s := range list {
		if s == seg {
			return true
		}
	}
	return false
}

// segments splits the path part of a URL, ignoring query and fragment.
func segments(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
