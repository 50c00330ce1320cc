package models

// Navigation targets returned to the front end as "redirect".
const (
	RouteDashboard = "/dashboard"
	RouteLogin     = "/login"
	RouteApprovals = "/admin/approvals"
	RouteUsers     = "/admin/users"
	RouteLogout    = "/logout"
)
