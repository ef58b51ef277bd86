package content

import (
	"net/url"
	"strings"
)

// uploadsPrefix marks a reference that is already server-relative.
const uploadsPrefix = "/uploads/"

// PathResolver rewrites question media references into canonical
// server-relative upload paths. Question images were authored across several
// deployments (localhost with assorted ports, staging hosts, bare filenames
// typed straight into the admin form), and the files themselves were migrated
// into a single upload directory. Whatever shape a stored reference has, the
// resolver maps it to a path under baseDir that this server can serve.
type PathResolver struct {
	baseDir   string // e.g. "/uploads/exam-questions"
	localPort string // the service's own default port
}

func NewPathResolver(baseDir, localPort string) *PathResolver {
	baseDir = strings.TrimSuffix(strings.TrimSpace(baseDir), "/")
	if baseDir == "" {
		baseDir = "/uploads/exam-questions"
	}
	return &PathResolver{baseDir: baseDir, localPort: localPort}
}

// Normalize applies the rewrite rules in order; the first match wins.
// It is idempotent over its own outputs.
func (p *PathResolver) Normalize(raw string) string {
	ref := strings.TrimSpace(raw)
	if ref == "" {
		return ""
	}

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		u, err := url.Parse(ref)
		if err != nil || u.Host == "" {
			// Looks like a URL but does not parse: salvage the filename.
			return p.rebuild(ref)
		}
		host := u.Hostname()
		local := host == "localhost" || host == "127.0.0.1"
		if local && (u.Port() == "" || u.Port() == p.localPort) {
			// Already points at this server.
			if strings.HasPrefix(u.Path, uploadsPrefix) {
				return u.Path
			}
			return p.rebuild(u.Path)
		}
		// Foreign host (old environment): the file was migrated here along
		// with the database, only the origin differs.
		return p.rebuild(u.Path)
	}

	if strings.HasPrefix(ref, uploadsPrefix) {
		return ref
	}
	return p.rebuild(ref)
}

// rebuild keeps only the final path segment and re-roots it under baseDir.
func (p *PathResolver) rebuild(s string) string {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	return p.baseDir + "/" + s
}
