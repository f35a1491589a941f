package endpoints

import (
	"github.com/modelgrid/modelgrid/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterWhoamiEndpoint(srv)
	RegisterDefinitionsEndpoints(srv)
	RegisterDynamicEndpoints(srv)
}
