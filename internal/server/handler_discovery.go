package server

import "net/http"

type endpointInfo struct {
	Path        string   `json:"path"`
	Methods     []string `json:"methods"`
	Description string   `json:"description"`
}

type discoveryResponse struct {
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Description string         `json:"description"`
	Endpoints   []endpointInfo `json:"endpoints"`
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	respondOK(w, RequestIDFromContext(r.Context()), discoveryResponse{
		Name:        "storecms proxy",
		Version:     Version,
		Description: "GraphQL proxy for the storefront CMS console",
		Endpoints: []endpointInfo{
			{"/api/gql", []string{"POST"}, "Forward a {query, variables} GraphQL request to the CMS backend"},
			{"/api/v1/health", []string{"GET"}, "Server health and upstream configuration"},
		},
	})
}
