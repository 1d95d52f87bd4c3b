package api

import (
	"net/http"
	"strings"

	"github.com/lexileapp/lexile-server/internal/typeface"
)

// CacheOneWeek is the Cache-Control value for typeface files.
const CacheOneWeek = "public, max-age=604800"

// registerFontRoutes serves the local typeface files referenced by the
// injected @font-face rules. Direct chi route; no auth, fonts are public.
func (s *Server) registerFontRoutes() {
	if s.fonts == nil {
		return
	}
	files := http.StripPrefix(typeface.DefaultPublicPath, http.FileServerFS(s.fonts))
	s.router.Get(typeface.DefaultPublicPath+"*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", CacheOneWeek)
		if strings.HasSuffix(r.URL.Path, ".woff2") {
			w.Header().Set("Content-Type", "font/woff2")
		}
		files.ServeHTTP(w, r)
	})
}
