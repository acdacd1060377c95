package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"coinfolio-api/internal/logic"
	"coinfolio-api/internal/svc"
)

func portfolioHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewPortfolioLogic(r.Context(), svcCtx)
		resp, err := l.Portfolio()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
			return
		}
		httpx.OkJsonCtx(r.Context(), w, resp)
	}
}
