package domain

// IntentName identifies one entry of the fixed intent catalogue
type IntentName string

const (
	IntentSalesInvoice IntentName = "sales_invoice"
	IntentSalesReturn  IntentName = "sales_return"
	IntentInventory    IntentName = "inventory"
	IntentPurchases    IntentName = "purchases"
	IntentSuppliers    IntentName = "suppliers"
	IntentCustomers    IntentName = "customers"
	IntentAccounts     IntentName = "accounts"
	IntentReports      IntentName = "reports"
	IntentWhere        IntentName = "where"
	IntentHow          IntentName = "how"
	IntentProblem      IntentName = "problem"
	IntentContact      IntentName = "contact"
)

// IntentNames lists every intent in catalogue order.
var IntentNames = []IntentName{
	IntentSalesInvoice,
	IntentSalesReturn,
	IntentInventory,
	IntentPurchases,
	IntentSuppliers,
	IntentCustomers,
	IntentAccounts,
	IntentReports,
	IntentWhere,
	IntentHow,
	IntentProblem,
	IntentContact,
}

// IsValid reports whether n is part of the catalogue
func (n IntentName) IsValid() bool {
	switch n {
	case IntentSalesInvoice, IntentSalesReturn, IntentInventory, IntentPurchases,
		IntentSuppliers, IntentCustomers, IntentAccounts, IntentReports,
		IntentWhere, IntentHow, IntentProblem, IntentContact:
		return true
	}
	return false
}

// Category groups intents and knowledge items by business area
type Category string

const (
	CategorySales           Category = "sales"
	CategoryInventory       Category = "inventory"
	CategoryPurchases       Category = "purchases"
	CategorySuppliers       Category = "suppliers"
	CategoryCustomers       Category = "customers"
	CategoryAccounts        Category = "accounts"
	CategoryReports         Category = "reports"
	CategoryNavigation      Category = "navigation"
	CategoryHowTo           Category = "howto"
	CategoryTroubleshooting Category = "troubleshooting"
	CategoryContact         Category = "contact"
	CategoryGeneral         Category = "general"
)

// Categories lists every known category.
var Categories = []Category{
	CategorySales,
	CategoryInventory,
	CategoryPurchases,
	CategorySuppliers,
	CategoryCustomers,
	CategoryAccounts,
	CategoryReports,
	CategoryNavigation,
	CategoryHowTo,
	CategoryTroubleshooting,
	CategoryContact,
	CategoryGeneral,
}

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	switch c {
	case CategorySales, CategoryInventory, CategoryPurchases, CategorySuppliers,
		CategoryCustomers, CategoryAccounts, CategoryReports, CategoryNavigation,
		CategoryHowTo, CategoryTroubleshooting, CategoryContact, CategoryGeneral:
		return true
	}
	return false
}

// ParseCategory converts s into a Category, rejecting unknown values
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}
