package api

// Options passed to a foreman API server on creation
type Options struct {
	// Addr is the address to listen on, eg. ":8100"
	Addr string

	// Static, if set, serves static files from the given dir.
	Static string

	// Debug enables per-request logging.
	Debug bool

	// TLSCert / TLSKey, if both set, serve the API over TLS.
	TLSCert string
	TLSKey  string
}
