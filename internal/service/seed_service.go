package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/apierror"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// SeedCatalog is the YAML document accepted by Seed:
//
//	categories:
//	  - name: Pulses
//	products:
//	  - name: Toor Dal 1kg
//	    category: Pulses
//	    selling_price: 120
//	    opening_stock: 20
//	    unit: packet
//	customers:
//	  - name: Asha Patil
//	    phone: "9876500001"
type SeedCatalog struct {
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
	Customers  []SeedCustomer `yaml:"customers"`
}

type SeedCategory struct {
	Name string `yaml:"name"`
	Icon string `yaml:"icon"`
}

type SeedProduct struct {
	Name              string          `yaml:"name"`
	Category          string          `yaml:"category"`
	PurchasePrice     decimal.Decimal `yaml:"purchase_price"`
	SellingPrice      decimal.Decimal `yaml:"selling_price"`
	OpeningStock      decimal.Decimal `yaml:"opening_stock"`
	LowStockThreshold decimal.Decimal `yaml:"low_stock_threshold"`
	Barcode           string          `yaml:"barcode"`
	Unit              string          `yaml:"unit"`
}

type SeedCustomer struct {
	Name    string `yaml:"name"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
	Notes   string `yaml:"notes"`
}

// SeedResult counts what Seed created. Entries that already exist (same
// category name, product barcode or name, customer phone or name) are skipped.
type SeedResult struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
	Customers  int `json:"customers"`
	Skipped    int `json:"skipped"`
}

// SeedService loads a starter catalog through the same validated operations
// the API uses, so seeded rows get inventory logs like any other.
type SeedService interface {
	Seed(ctx context.Context, r io.Reader) (*SeedResult, error)
}

type seedService struct {
	categories CategoryService
	products   ProductService
	customers  CustomerService
}

func NewSeedService(categories CategoryService, products ProductService, customers CustomerService) SeedService {
	return &seedService{categories: categories, products: products, customers: customers}
}

func ParseSeedCatalog(r io.Reader) (*SeedCatalog, error) {
	var cat SeedCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: seed file: %v", apierror.ErrValidation, err)
	}
	return &cat, nil
}

func (s *seedService) Seed(ctx context.Context, r io.Reader) (*SeedResult, error) {
	cat, err := ParseSeedCatalog(r)
	if err != nil {
		return nil, err
	}
	res := &SeedResult{}

	existingCats, err := s.categories.List(ctx, "all")
	if err != nil {
		return nil, err
	}
	catIDs := make(map[string]string, len(existingCats))
	for _, c := range existingCats {
		catIDs[key(c.Name)] = c.ID
	}
	for i, c := range cat.Categories {
		if _, ok := catIDs[key(c.Name)]; ok {
			res.Skipped++
			continue
		}
		created, err := s.categories.Create(ctx, dto.CategoryRequest{Name: c.Name, Icon: c.Icon})
		if err != nil {
			return res, fmt.Errorf("category %d (%s): %w", i+1, c.Name, err)
		}
		catIDs[key(c.Name)] = created.ID
		res.Categories++
	}

	existingProducts, err := s.products.List(ctx, dto.ProductFilter{Active: "all"})
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for _, p := range existingProducts {
		seen["name:"+key(p.Name)] = true
		if p.Barcode != nil {
			seen["barcode:"+*p.Barcode] = true
		}
	}
	for i, p := range cat.Products {
		if seen["name:"+key(p.Name)] || (p.Barcode != "" && seen["barcode:"+p.Barcode]) {
			res.Skipped++
			continue
		}
		req := dto.CreateProductRequest{
			Name:              p.Name,
			PurchasePrice:     p.PurchasePrice,
			SellingPrice:      p.SellingPrice,
			OpeningStock:      p.OpeningStock,
			LowStockThreshold: p.LowStockThreshold,
			Unit:              p.Unit,
		}
		if p.Category != "" {
			id, ok := catIDs[key(p.Category)]
			if !ok {
				return res, fmt.Errorf("product %d (%s): %w", i+1, p.Name, dto.Invalid("category", "exists"))
			}
			req.CategoryID = &id
		}
		if p.Barcode != "" {
			b := p.Barcode
			req.Barcode = &b
		}
		if _, err := s.products.Create(ctx, req); err != nil {
			return res, fmt.Errorf("product %d (%s): %w", i+1, p.Name, err)
		}
		seen["name:"+key(p.Name)] = true
		if p.Barcode != "" {
			seen["barcode:"+p.Barcode] = true
		}
		res.Products++
	}

	existingCustomers, err := s.customers.List(ctx, dto.CustomerFilter{Active: "all"})
	if err != nil {
		return nil, err
	}
	for _, c := range existingCustomers {
		seen["customer:"+customerKey(c.Name, c.Phone)] = true
	}
	for i, c := range cat.Customers {
		k := "customer:" + customerKey(c.Name, c.Phone)
		if seen[k] {
			res.Skipped++
			continue
		}
		req := dto.CreateCustomerRequest{Name: c.Name, Phone: c.Phone, Address: c.Address, Notes: c.Notes}
		if _, err := s.customers.Create(ctx, req); err != nil {
			return res, fmt.Errorf("customer %d (%s): %w", i+1, c.Name, err)
		}
		seen[k] = true
		res.Customers++
	}

	log.Info().
		Int("categories", res.Categories).
		Int("products", res.Products).
		Int("customers", res.Customers).
		Int("skipped", res.Skipped).
		Msg("catalog seeded")
	return res, nil
}

func key(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

func customerKey(name, phone string) string {
	if phone != "" {
		return "phone:" + phone
	}
	return "name:" + key(name)
}
