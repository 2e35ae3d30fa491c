package models

// CustomDomain maps a registered host to the base URL unknown codes on that
// host are forwarded to.
type CustomDomain struct {
	Domain string `json:"domain"`
	Target string `json:"target"`
}
