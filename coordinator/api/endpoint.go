package api

import (
	"context"

	"github.com/go-kit/kit/endpoint"

	"github.com/boostmesh/boostmesh/coordinator"
)

func statusEndpoint(svc coordinator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		status, err := svc.Status(ctx)
		if err != nil {
			return statusResponse{}, err
		}

		return statusResponse{Status: status}, nil
	}
}
