package ltiaas

const (
	ltikAuthorizationPrefix   = "LTIK-AUTH-V1 Token="
	ltikAdditionalBearer      = ", Additional=Bearer "
	bearerAuthorizationPrefix = "Bearer "

	idTokenPath     = "/api/idtoken"
	membershipsPath = "/api/memberships"
)

// authScheme names the header form selected for a request (used in logs only).
type authScheme string

const (
	schemeLTIK   authScheme = "ltik"
	schemeBearer authScheme = "bearer"
)

// buildAuthorizationHeader selects the LTIK form when ltik is non-empty and the
// bearer-only form otherwise.
func buildAuthorizationHeader(apiKey, ltik string) (string, authScheme) {
	if ltik != "" {
		return ltikAuthorizationPrefix + ltik + ltikAdditionalBearer + apiKey, schemeLTIK
	}
	return bearerAuthorizationPrefix + apiKey, schemeBearer
}
