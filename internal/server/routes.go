package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/complyra/complyra/internal/api/v1"
)

func registerAuthRoutes(api huma.API, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, deps *v1.Deps) {
	v1.RegisterCompanyRoutes(api, deps)
	v1.RegisterSystemRoutes(api, deps)
	v1.RegisterTaskRoutes(api, deps)
	v1.RegisterDocumentRoutes(api, deps)
	v1.RegisterIncidentRoutes(api, deps)
	v1.RegisterCalendarRoutes(api, deps)
	v1.RegisterMemberRoutes(api, deps)
	v1.RegisterAuditRoutes(api, deps)
	v1.RegisterNotificationRoutes(api, deps)
}
