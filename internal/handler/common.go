package handler

import (
	"net/http"
	"strconv"

	"marketplace/internal/domain/model"
	"marketplace/internal/middleware"
	"marketplace/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// usecaseのエラーをHTTPへ変換する。種類が分からなければ500
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if de, ok := usecase.AsDomainError(err); ok {
		return c.JSON(de.HTTPStatus(), ErrorResponse{Error: de.Message, Code: string(de.Kind)})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserID(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	id, ok := v.(int64)
	return id, ok && id > 0
}

func getRole(c echo.Context) (model.Role, bool) {
	v := c.Get(middleware.CtxUserRoleKey)
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return model.Role(s), true
}

// 認証済みであることが前提のハンドラ用
func getIdentity(c echo.Context) (int64, model.Role, bool) {
	id, ok := getUserID(c)
	if !ok {
		return 0, "", false
	}
	role, ok := getRole(c)
	if !ok {
		return 0, "", false
	}
	return id, role, true
}

// page/limitのクエリを読む（無ければ0のままusecase側でdefault）
func parsePageQuery(c echo.Context) (int, int, bool) {
	page := 0
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		page = p
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, false
		}
		limit = l
	}

	return page, limit, true
}

func parseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
