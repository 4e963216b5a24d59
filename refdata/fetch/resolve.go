package fetch

import (
	"net/url"
	"strings"

	"github.com/morikuni/failure/v2"
)

// ResolveDirectURL rewrites well-known file-hosting share URLs to their
// direct-download form. URLs that are not share links pass through
// unchanged; share links that cannot be resolved fail rather than falling
// back silently.
func ResolveDirectURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", failure.New(ErrResolveFailed,
			failure.Message("URL could not be parsed"),
			failure.Context{"url": rawURL, "error": err.Error()},
		)
	}

	switch {
	case isDropboxShare(u.Host):
		return resolveDropbox(u), nil
	case u.Host == "drive.google.com":
		return resolveGoogleDrive(u)
	case u.Host == "github.com":
		return resolveGitHub(u), nil
	default:
		return rawURL, nil
	}
}

func isDropboxShare(host string) bool {
	return host == "dropbox.com" || strings.HasSuffix(host, ".dropbox.com")
}

// resolveDropbox points a share-page URL at the user content host and drops
// the dl flag that forces the interstitial page.
func resolveDropbox(u *url.URL) string {
	u.Host = "dl.dropboxusercontent.com"
	q := u.Query()
	q.Del("dl")
	u.RawQuery = q.Encode()
	return u.String()
}

// resolveGoogleDrive extracts the file id from a viewer URL and builds the
// export-download form.
func resolveGoogleDrive(u *url.URL) (string, error) {
	var id string

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 3 && parts[0] == "file" && parts[1] == "d" {
		id = parts[2]
	} else if u.Path == "/open" {
		id = u.Query().Get("id")
	}

	if id == "" {
		return "", failure.New(ErrResolveFailed,
			failure.Message("Google Drive share link carries no file id"),
			failure.Context{"url": u.String()},
		)
	}
	return "https://drive.google.com/uc?export=download&id=" + id, nil
}

// resolveGitHub turns a blob page URL into its raw content form. Other
// GitHub URLs are left alone.
func resolveGitHub(u *url.URL) string {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) >= 5 && parts[2] == "blob" {
		segs := append([]string{}, parts[:2]...)
		segs = append(segs, parts[3:]...)

		raw := *u
		raw.Host = "raw.githubusercontent.com"
		raw.Path = "/" + strings.Join(segs, "/")
		return raw.String()
	}
	return u.String()
}
