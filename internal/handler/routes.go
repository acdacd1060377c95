package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"coinfolio-api/internal/svc"
)

// RegisterHandlers wires the public and JWT-guarded route groups.
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodPost,
				Path:    "/api/users",
				Handler: registerHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/login",
				Handler: loginHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/search",
				Handler: searchHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/coins/:coinId/history",
				Handler: historyHandler(svcCtx),
			},
		},
	)

	server.AddRoutes(
		[]rest.Route{
			{
				Method:  http.MethodGet,
				Path:    "/api/portfolio",
				Handler: portfolioHandler(svcCtx),
			},
			{
				Method:  http.MethodGet,
				Path:    "/api/holdings",
				Handler: listHoldingsHandler(svcCtx),
			},
			{
				Method:  http.MethodPost,
				Path:    "/api/holdings",
				Handler: addHoldingHandler(svcCtx),
			},
			{
				Method:  http.MethodPut,
				Path:    "/api/holdings",
				Handler: updateHoldingHandler(svcCtx),
			},
			{
				Method:  http.MethodDelete,
				Path:    "/api/holdings/:coinId",
				Handler: deleteHoldingHandler(svcCtx),
			},
		},
		rest.WithJwt(svcCtx.Config.Auth.AccessSecret),
	)
}
