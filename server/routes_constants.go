package server

// Route path constants
const (
	RouteIndex    = "/"
	RouteLogin    = "/login"
	RouteSettings = "/settings"
	RouteLogout   = "/logout"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
