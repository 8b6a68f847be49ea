package handlers

import "net/url"

// Canonical pages the processing endpoints redirect to.
const (
	RegistrationPage = "/index.html"
	LoginPage        = "/html/login.html"
	HomePage         = "/html/inicio.html"
)

// Query markers appended to redirect targets.
const (
	MarkerValidation     = "validacion"
	MarkerDuplicate      = "duplicado"
	MarkerSystem         = "sistema"
	MarkerGeneral        = "general"
	MarkerCredentials    = "credenciales"
	MarkerInactive       = "inactivo"
	MarkerRateLimited    = "limite"
	MarkerSessionExpired = "sesion_expirada"
	MarkerSuccess        = "exitoso"
)

func withQuery(path, key, value string) string {
	return path + "?" + url.Values{key: []string{value}}.Encode()
}

// SessionExpiredURL is where the home page sends anonymous visitors.
func SessionExpiredURL() string {
	return withQuery(LoginPage, "error", MarkerSessionExpired)
}
