package fsstore

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/yourorg/listing-api/listing"
)

// MediaHandler serves asset files at the paths their locators name, relative
// to URLPrefix. Definition files and anything outside an asset directory
// are not served.
func (s *Store) MediaHandler() http.Handler {
	sub, err := fs.Sub(s.FS, s.Root)
	if err != nil {
		sub = s.FS
	}
	files := http.FileServerFS(sub)
	return http.StripPrefix(s.URLPrefix, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")
		if len(parts) != 3 {
			http.NotFound(w, r)
			return
		}
		kind, ok := assetDirs[parts[1]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if k, ok := listing.KindForFile(parts[2]); !ok || k != kind {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}))
}
