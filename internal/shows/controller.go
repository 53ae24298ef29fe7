package shows

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"tixbridge/internal/shared/utils/response"
)

type Controller interface {
	ListShows(c *gin.Context)
	GetShow(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) ListShows(c *gin.Context) {
	query := ListQuery{Location: c.Query("location")}

	if raw := strings.TrimSpace(c.Query("fetchAll")); raw != "" {
		fetchAll, err := strconv.ParseBool(raw)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid fetchAll parameter", nil, err.Error())
			return
		}
		query.FetchAll = fetchAll
	}

	list, err := ctrl.service.ListShows(c.Request.Context(), query)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Shows retrieved successfully", list, nil)
}

func (ctrl *controller) GetShow(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Show ID is required", nil, nil)
		return
	}

	show, err := ctrl.service.GetShow(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Show retrieved successfully", show, nil)
}
