package ai

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const insightsSystemPrompt = `You are an AI assistant for inventory management. Analyze the provided inventory data and provide actionable insights.
Focus on:
1. Stock optimization recommendations
2. Cost saving opportunities
3. Demand forecasting
4. Risk identification

Be specific, data-driven, and provide clear action items.`

// Thresholds for rule-based insights.
const (
	overstockFactor    = 3
	highValueThreshold = 10000
	maxListedItems     = 3
)

// InsightItem is one item's stock snapshot.
type InsightItem struct {
	ItemCode        string  `json:"item_code" validate:"required"`
	Description     string  `json:"description"`
	CurrentStock    float64 `json:"current_stock"`
	AvgMonthlyUsage float64 `json:"avg_monthly_usage"`
	UnitCost        float64 `json:"unit_cost"`
	ReorderLevel    float64 `json:"reorder_level"`
}

func (i InsightItem) value() float64 { return i.CurrentStock * i.UnitCost }

// InsightTransaction is a recent stock movement.
type InsightTransaction struct {
	ItemCode        string  `json:"item_code" validate:"required"`
	Quantity        float64 `json:"quantity"`
	TransactionDate string  `json:"transaction_date"`
	Department      string  `json:"department"`
}

// InsightRequest carries the data analysed by InventoryInsights.
type InsightRequest struct {
	Items        []InsightItem        `json:"itemData" validate:"required,min=1,dive"`
	Transactions []InsightTransaction `json:"transactionData" validate:"omitempty,dive"`
	Context      string               `json:"context"`
}

// FormatInventoryPrompt renders req as the user prompt sent to providers.
func FormatInventoryPrompt(req InsightRequest) string {
	var b strings.Builder
	b.WriteString("Inventory Data Analysis Request:\n\n")
	fmt.Fprintf(&b, "Items (%d):\n", len(req.Items))
	for i, it := range req.Items {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "- %s: %s\n", it.ItemCode, it.Description)
		fmt.Fprintf(&b, "  Current Stock: %g, Avg Monthly Usage: %g, Reorder Level: %g\n", it.CurrentStock, it.AvgMonthlyUsage, it.ReorderLevel)
		fmt.Fprintf(&b, "  Unit Cost: ฿%.2f, Total Value: ฿%.2f", it.UnitCost, it.value())
	}
	if len(req.Transactions) > 0 {
		fmt.Fprintf(&b, "\n\nRecent Transactions (%d):\n", len(req.Transactions))
		for i, tx := range req.Transactions {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "- %s: %g units to %s on %s", tx.ItemCode, tx.Quantity, tx.Department, displayDate(tx.TransactionDate))
		}
	}
	if req.Context != "" {
		fmt.Fprintf(&b, "\n\nAdditional Context: %s", req.Context)
	}
	b.WriteString("\n\nPlease analyze this data and provide 3-5 key insights with specific recommendations.")
	return b.String()
}

// RuleBasedInsights summarises stock levels without a provider.
func RuleBasedInsights(req InsightRequest) string {
	var insights []string

	var low, over, highValue, highUsage []InsightItem
	for _, it := range req.Items {
		if it.CurrentStock <= it.ReorderLevel {
			low = append(low, it)
		}
		if it.CurrentStock > it.ReorderLevel*overstockFactor {
			over = append(over, it)
		}
		if it.value() > highValueThreshold {
			highValue = append(highValue, it)
		}
		if it.AvgMonthlyUsage > 0 {
			highUsage = append(highUsage, it)
		}
	}

	if len(low) > 0 {
		insights = append(insights, fmt.Sprintf("🚨 **Low Stock Alert**: %d items need reordering. Consider prioritizing %s.", len(low), low[0].ItemCode))
	}
	if len(over) > 0 {
		var total float64
		for _, it := range over {
			total += it.value()
		}
		insights = append(insights, fmt.Sprintf("📦 **Overstock Detected**: %d items have excess inventory. Total value: ฿%.2f.", len(over), total))
	}
	if len(highValue) > 0 {
		sort.SliceStable(highValue, func(i, j int) bool { return highValue[i].value() > highValue[j].value() })
		codes := make([]string, 0, maxListedItems)
		for _, it := range highValue[:min(maxListedItems, len(highValue))] {
			codes = append(codes, it.ItemCode)
		}
		insights = append(insights, "💰 **High Value Items**: Top items by inventory value: "+strings.Join(codes, ", "))
	}
	if len(highUsage) > 0 {
		sort.SliceStable(highUsage, func(i, j int) bool { return highUsage[i].AvgMonthlyUsage > highUsage[j].AvgMonthlyUsage })
		parts := make([]string, 0, maxListedItems)
		for _, it := range highUsage[:min(maxListedItems, len(highUsage))] {
			parts = append(parts, fmt.Sprintf("%s (%g/month)", it.ItemCode, it.AvgMonthlyUsage))
		}
		insights = append(insights, "📊 **High Usage Items**: Most consumed items: "+strings.Join(parts, ", "))
	}
	if len(insights) == 0 {
		insights = append(insights, "✅ **Inventory Status**: All items are within normal stock levels. Continue monitoring for any changes in demand patterns.")
	}
	return strings.Join(insights, "\n\n")
}

func displayDate(v string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return v
}
