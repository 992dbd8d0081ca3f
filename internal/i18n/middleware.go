package i18n

import "net/http"

// Cookie remembers a language chosen with ?lang=.
const Cookie = "lang"

// Middleware picks the request language from ?lang=, the lang cookie and
// Accept-Language, in that order, and injects its localizer. The lang cookie
// is scoped to basePath so deployments sharing a host keep separate choices.
func Middleware(basePath string) func(http.Handler) http.Handler {
	cookiePath := "/"
	if basePath != "" {
		cookiePath = basePath + "/"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var prefs []string
			if q := r.URL.Query().Get("lang"); q != "" {
				lang := Match(q)
				http.SetCookie(w, &http.Cookie{
					Name:     Cookie,
					Value:    lang,
					Path:     cookiePath,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				prefs = append(prefs, lang)
			}
			if c, err := r.Cookie(Cookie); err == nil {
				prefs = append(prefs, c.Value)
			}
			prefs = append(prefs, r.Header.Get("Accept-Language"))
			ctx := WithLanguage(r.Context(), Match(prefs...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
