package endpoints

import (
	"net/http"

	"github.com/modelgrid/modelgrid/pkg/identity"
	"github.com/modelgrid/modelgrid/pkg/server"
)

// WhoamiResponse represents the response from the /whoami endpoint
type WhoamiResponse struct {
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	ClientIP string `json:"clientIp,omitempty"`
}

// RegisterWhoamiEndpoint registers the /whoami endpoint
func RegisterWhoamiEndpoint(s *server.Server) {
	whoamiRouter := s.Router.PathPrefix("/whoami").Subrouter()
	whoamiRouter.Use(s.TokenAuthenticator.Middleware)

	whoamiRouter.HandleFunc("", handleWhoami()).Methods("GET")
}

func handleWhoami() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := identity.Get(r.Context())
		if !ok || caller == nil {
			respondWithError(w, http.StatusUnauthorized, "Unable to determine identity")
			return
		}

		response := WhoamiResponse{
			UserID: caller.UserID,
			Email:  caller.Email,
			Role:   caller.Role,
		}
		if caller.RemoteIP != nil {
			response.ClientIP = caller.RemoteIP.String()
		}

		respondWithJSON(w, http.StatusOK, response)
	}
}
