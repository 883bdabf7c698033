package clickgate

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
