package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/northwind-labs/storefront-api/pkg/ai"
	"github.com/northwind-labs/storefront-api/pkg/global"
)

// GenerateAISalesReport aggregates sales buckets for the requested window
// and layers AI commentary on top when the service is configured. Defaults
// to the trailing 30 days, grouped by day.
func GenerateAISalesReport(c *gin.Context) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -30)

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid start date", []global.ValidationError{
				{Field: "start_date", Message: "Date must be YYYY-MM-DD", Code: "invalid_format"},
			}))
			return
		}
		startDate = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid end date", []global.ValidationError{
				{Field: "end_date", Message: "Date must be YYYY-MM-DD", Code: "invalid_format"},
			}))
			return
		}
		endDate = parsed
	}

	groupBy := c.DefaultQuery("group_by", "day")
	if groupBy != "day" && groupBy != "month" {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid grouping", []global.ValidationError{
			{Field: "group_by", Message: "group_by must be day or month", Code: "invalid"},
		}))
		return
	}

	report, err := ai.GenerateSalesReport(c.Request.Context(), startDate, endDate, groupBy)
	if err != nil {
		global.Logger.Error("generate sales report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to generate sales report", nil))
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(report))
}
