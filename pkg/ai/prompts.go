package ai

import (
	"encoding/json"
	"fmt"
)

const salesReportSystemPrompt = `You are a professional business analyst specializing in e-commerce sales data analysis.
Generate concise, actionable insights from sales data. Focus on:
- Key performance indicators and trends
- Growth opportunities and concerns
- Specific recommendations for business decisions
- Clear, executive-level language
Keep responses to 3-4 paragraphs maximum.`

func formatSalesDataPrompt(salesData interface{}) string {
	jsonData, _ := json.MarshalIndent(salesData, "", "  ")
	return fmt.Sprintf(`Analyze the following sales analytics data and provide business insights:

%s

Please provide:
1. Key performance highlights and trends
2. Areas of concern or opportunity
3. Specific recommendations for business growth
4. Actionable next steps for the management team`, string(jsonData))
}
