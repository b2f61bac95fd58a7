package config

import "net/http"

// SameSiteMode translates the configured value into its net/http counterpart.
// Unknown values leave the attribute unset.
func (s CookieSameSite) SameSiteMode() http.SameSite {
	switch s {
	case CookieSameSiteNone:
		return http.SameSiteNoneMode
	case CookieSameSiteLax:
		return http.SameSiteLaxMode
	case CookieSameSiteStrict:
		return http.SameSiteStrictMode
	default:
		return http.SameSiteDefaultMode
	}
}

func (ct *CookieTemplate) ToCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     ct.Name,
		Value:    value,
		MaxAge:   ct.MaxAge,
		Path:     ct.Path,
		Domain:   ct.Domain,
		Secure:   ct.Secure,
		HttpOnly: ct.HTTPOnly,
		SameSite: ct.SameSite.SameSiteMode(),
	}
}
