// Package repository holds the per-entity data access used by the services.
// Every repository sits on a store.Collection; methods ending in Tx run inside
// a store.Write and see that transaction's own writes.
package repository

import (
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/model"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/store"
)

// Collections binds every entity to its table.
type Collections struct {
	Customers     *store.Collection[model.Customer, *model.Customer]
	Categories    *store.Collection[model.Category, *model.Category]
	Products      *store.Collection[model.Product, *model.Product]
	InventoryLogs *store.Collection[model.InventoryLog, *model.InventoryLog]
	Bills         *store.Collection[model.Bill, *model.Bill]
	BillItems     *store.Collection[model.BillItem, *model.BillItem]
	Payments      *store.Collection[model.Payment, *model.Payment]
	CreditEntries *store.Collection[model.CreditEntry, *model.CreditEntry]
}

// NewCollections wires the collections; the column lists are what Search
// matches on for each table.
func NewCollections(s *store.Store) *Collections {
	return &Collections{
		Customers:     store.NewCollection[model.Customer](s, "name", "phone"),
		Categories:    store.NewCollection[model.Category](s, "name"),
		Products:      store.NewCollection[model.Product](s, "name", "barcode"),
		InventoryLogs: store.NewCollection[model.InventoryLog](s, "notes"),
		Bills:         store.NewCollection[model.Bill](s, "bill_number"),
		BillItems:     store.NewCollection[model.BillItem](s, "product_name"),
		Payments:      store.NewCollection[model.Payment](s),
		CreditEntries: store.NewCollection[model.CreditEntry](s, "notes"),
	}
}

// Repositories groups every repository for service wiring.
type Repositories struct {
	Customers  CustomerRepository
	Categories CategoryRepository
	Products   ProductRepository
	Inventory  InventoryRepository
	Bills      BillRepository
	Credit     CreditRepository
}

func New(s *store.Store) *Repositories {
	c := NewCollections(s)
	return &Repositories{
		Customers:  NewCustomerRepository(c),
		Categories: NewCategoryRepository(c),
		Products:   NewProductRepository(c),
		Inventory:  NewInventoryRepository(c),
		Bills:      NewBillRepository(c),
		Credit:     NewCreditRepository(c),
	}
}

// activeClauses turns the "true"|"false"|"all" filter convention into
// conditions on is_active. Empty means active only.
func activeClauses(active string) []store.Clause {
	switch active {
	case "all":
		return nil
	case "false":
		return []store.Clause{store.Eq("is_active", false)}
	default:
		return []store.Clause{store.Eq("is_active", true)}
	}
}
