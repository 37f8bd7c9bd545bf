package schema

// Table names, in backup dependency order.
const (
	TableCustomers     = "customers"
	TableCategories    = "categories"
	TableProducts      = "products"
	TableInventoryLogs = "inventory_logs"
	TableBills         = "bills"
	TableBillItems     = "bill_items"
	TablePayments      = "payments"
	TableCreditEntries = "credit_entries"
)

// AppVersion is the schema version this build understands.
const AppVersion = 3

func timestamps() []Column {
	return []Column{
		{Name: "created_at", Type: Integer, Indexed: true},
		{Name: "updated_at", Type: Integer},
	}
}

func withTimestamps(cols ...Column) []Column {
	return append(cols, timestamps()...)
}

// App is the schema of the shop database.
//
// History:
//
//	v1  initial tables
//	v2  categories.is_active, bills.notes
//	v3  credit_entries.notes
var App = MustRegistry(AppVersion,
	[]Table{
		{Name: TableCustomers, Columns: withTimestamps(
			Column{Name: "name", Type: String, Indexed: true},
			Column{Name: "phone", Type: String, Indexed: true},
			Column{Name: "address", Type: String},
			Column{Name: "notes", Type: String},
			Column{Name: "is_active", Type: Boolean, Default: "1"},
		)},
		{Name: TableCategories, Columns: withTimestamps(
			Column{Name: "name", Type: String},
			Column{Name: "icon", Type: String},
			Column{Name: "is_active", Type: Boolean, Default: "1"},
		)},
		{Name: TableProducts, Columns: withTimestamps(
			Column{Name: "name", Type: String, Indexed: true},
			Column{Name: "category_id", Type: String, Optional: true, Indexed: true},
			Column{Name: "purchase_price", Type: Number},
			Column{Name: "selling_price", Type: Number},
			Column{Name: "current_stock", Type: Number},
			Column{Name: "low_stock_threshold", Type: Number},
			Column{Name: "barcode", Type: String, Optional: true, Indexed: true},
			Column{Name: "unit", Type: String},
			Column{Name: "is_active", Type: Boolean, Default: "1"},
		)},
		{Name: TableInventoryLogs, Columns: withTimestamps(
			Column{Name: "product_id", Type: String, Indexed: true},
			Column{Name: "quantity_change", Type: Number},
			Column{Name: "reason", Type: String},
			Column{Name: "notes", Type: String},
		)},
		{Name: TableBills, Columns: withTimestamps(
			Column{Name: "bill_number", Type: String, Unique: true},
			Column{Name: "customer_id", Type: String, Optional: true, Indexed: true},
			Column{Name: "subtotal", Type: Number},
			Column{Name: "discount_total", Type: Number},
			Column{Name: "grand_total", Type: Number},
			Column{Name: "payment_mode", Type: String},
			Column{Name: "status", Type: String, Indexed: true},
			Column{Name: "notes", Type: String},
		)},
		{Name: TableBillItems, Columns: withTimestamps(
			Column{Name: "bill_id", Type: String, Indexed: true},
			Column{Name: "product_id", Type: String, Indexed: true},
			Column{Name: "product_name", Type: String},
			Column{Name: "quantity", Type: Number},
			Column{Name: "unit_price", Type: Number},
			Column{Name: "discount", Type: Number},
			Column{Name: "line_total", Type: Number},
		)},
		{Name: TablePayments, Columns: withTimestamps(
			Column{Name: "bill_id", Type: String, Indexed: true},
			Column{Name: "customer_id", Type: String, Optional: true, Indexed: true},
			Column{Name: "amount", Type: Number},
			Column{Name: "payment_mode", Type: String},
		)},
		{Name: TableCreditEntries, Columns: withTimestamps(
			Column{Name: "customer_id", Type: String, Indexed: true},
			Column{Name: "bill_id", Type: String, Optional: true, Indexed: true},
			Column{Name: "entry_type", Type: String},
			Column{Name: "amount", Type: Number},
			Column{Name: "balance_after", Type: Number},
			Column{Name: "notes", Type: String},
		)},
	},
	Migration{ToVersion: 2, Steps: []Step{
		{Kind: AddColumns, Table: TableCategories, Columns: []Column{{Name: "is_active", Type: Boolean, Default: "1"}}},
		{Kind: AddColumns, Table: TableBills, Columns: []Column{{Name: "notes", Type: String}}},
	}},
	Migration{ToVersion: 3, Steps: []Step{
		{Kind: AddColumns, Table: TableCreditEntries, Columns: []Column{{Name: "notes", Type: String}}},
	}},
)
