package repository

// Key prefixes of the records owned by the repositories.
const (
	linkPrefix       = "url:"
	targetPrefix     = "target:"
	clicksPrefix     = "clicks:"
	totalClicksKey   = "stats:total-clicks"
	domainPrefix     = "domain:"
	credentialPrefix = "apikey:"
)
