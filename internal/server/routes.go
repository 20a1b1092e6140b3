package server

// Route paths served by the API
const (
	RouteIndex = "/"

	// Authentication endpoints
	RouteAuthRegister      = "/auth/register"
	RouteAuthLogin         = "/auth/login"
	RouteAuthMe            = "/auth/me"
	RouteAuthNotifications = "/auth/notifications"

	// Face verification endpoints
	RouteFaceRegister = "/face/register"
	RouteFaceVerify   = "/face/verify"
	RouteFaceStatus   = "/face/status"
	RouteFaceDelete   = "/face/delete"

	// Locker and access-log endpoints
	RouteBoxes = "/api/boxes"
	RouteLogs  = "/api/logs"
	RouteUsers = "/api/users"
)

// PublicRoutes defines endpoints that don't require authentication.
// Face verification is deliberately public: it acts as a step-up
// credential presented before a session is considered fully trusted.
var PublicRoutes = map[string]bool{
	RouteIndex:        true,
	RouteAuthRegister: true,
	RouteAuthLogin:    true,
	RouteFaceVerify:   true,
}
