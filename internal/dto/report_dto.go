package dto

import "github.com/shopspring/decimal"

// ReportRange is bound from the query string of the report endpoints.
// Both dates are local calendar dates, inclusive; empty means unbounded.
type ReportRange struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
}

type DailySales struct {
	Date  string          `json:"date"` // YYYY-MM-DD
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type PaymentModeTotal struct {
	Mode  string          `json:"mode"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type SalesReport struct {
	TotalSales     decimal.Decimal    `json:"total_sales"`
	TotalBills     int                `json:"total_bills"`
	AverageBill    decimal.Decimal    `json:"average_bill"`
	DailyBreakdown []DailySales       `json:"daily_breakdown"`
	ByPaymentMode  []PaymentModeTotal `json:"by_payment_mode"`
}

type CustomerCredit struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

type CreditReport struct {
	TotalOutstanding decimal.Decimal  `json:"total_outstanding"`
	Customers        []CustomerCredit `json:"customers"`
}

type InventoryReport struct {
	TotalProducts   int               `json:"total_products"`
	TotalStockValue decimal.Decimal   `json:"total_stock_value"`
	TotalCostValue  decimal.Decimal   `json:"total_cost_value"`
	LowStockCount   int               `json:"low_stock_count"`
	OutOfStockCount int               `json:"out_of_stock_count"`
	LowStock        []ProductResponse `json:"low_stock"`
}

type ProductPerformance struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}
