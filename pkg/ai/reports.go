package ai

import (
	"context"
	"time"

	"github.com/northwind-labs/storefront-api/pkg/mongo"
)

// ReportResponse wraps a generated report. AIEnabled tells the client whether
// the insights section could be produced at all.
type ReportResponse struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    interface{} `json:"raw_data"`
	AIInsights string      `json:"ai_insights,omitempty"`
	Summary    string      `json:"summary"`
	Error      string      `json:"error,omitempty"`
}

// GenerateSalesReport runs the sales aggregation and, when the AI service is
// up, layers generated insights on top of the raw buckets. Aggregation
// failures are errors; insight failures degrade to raw data.
func GenerateSalesReport(ctx context.Context, startDate, endDate time.Time, groupBy string) (*ReportResponse, error) {
	salesData, err := mongo.GetSalesAnalytics(ctx, startDate, endDate, groupBy)
	if err != nil {
		return &ReportResponse{
			Status:      "error",
			Data:        ReportData{Error: "Failed to fetch sales data: " + err.Error()},
			GeneratedAt: time.Now(),
			AIEnabled:   IsEnabled(),
		}, err
	}

	response := &ReportResponse{
		Status:      "success",
		GeneratedAt: time.Now(),
		AIEnabled:   IsEnabled(),
		Data: ReportData{
			RawData: salesData,
			Summary: "Sales data retrieved successfully",
		},
	}

	if IsEnabled() {
		userPrompt := formatSalesDataPrompt(salesData)
		insights, err := generateCompletion(ctx, salesReportSystemPrompt, userPrompt)
		if err != nil {
			response.Data.Error = "AI analysis failed: " + err.Error()
		} else {
			response.Data.AIInsights = insights
			response.Data.Summary = "AI-generated sales insights and recommendations"
		}
	} else {
		response.Data.Summary = "Raw sales data (AI insights unavailable)"
	}

	return response, nil
}
