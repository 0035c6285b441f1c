package api

import "github.com/boostmesh/boostmesh/coordinator"

type statusResponse struct {
	coordinator.Status
}

type healthResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
}
