package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/expense"
	"github.com/jhoicas/inventario-pos/internal/application/gate"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/application/reporting"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC    *catalog.CategoryUseCase
	ProductUC     *catalog.ProductUseCase
	RawMaterialUC *catalog.RawMaterialUseCase
	CustomerUC    *catalog.CustomerUseCase
	CompanyUC     *catalog.CompanyUseCase
	SaleUC        *sales.SaleUseCase
	InvoiceUC     *sales.InvoiceUseCase
	ExpenseUC     *expense.UseCase
	InventoryUC   *inventory.UseCase
	Replenishment *inventory.ReplenishmentUseCase
	ReportUC      *reporting.UseCase
	Portation     *portation.Service
	ImportWorker  *portation.Worker
	GateUC        *gate.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Puerta de acceso (público)
	gateHandler := NewGateHandler(deps.GateUC)
	api.Get("/gate", gateHandler.Status)
	api.Put("/gate/password", gateHandler.SetPassword)
	api.Post("/gate/unlock", gateHandler.Unlock)

	// Empresa y categorías
	companyHandler := NewCompanyHandler(deps.CompanyUC, deps.CategoryUC)
	api.Get("/company", companyHandler.Get)
	api.Put("/company", companyHandler.Save)
	categories := api.Group("/categories")
	categories.Post("/", companyHandler.CreateCategory)
	categories.Get("/", companyHandler.ListCategories)
	categories.Get("/:id", companyHandler.GetCategory)
	categories.Put("/:id", companyHandler.UpdateCategory)
	categories.Delete("/:id", companyHandler.DeleteCategory)

	// Productos
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Materias primas
	materials := api.Group("/raw-materials")
	materialHandler := NewRawMaterialHandler(deps.RawMaterialUC)
	materials.Post("/", materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", materialHandler.Update)
	materials.Delete("/:id", materialHandler.Delete)

	// Clientes
	customers := api.Group("/customers")
	customerHandler := NewCustomerHandler(deps.CustomerUC)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)
	customers.Put("/:id", customerHandler.Update)
	customers.Delete("/:id", customerHandler.Delete)

	// Ventas y facturas
	salesGroup := api.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC)
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/invoice/:number", saleHandler.GetByInvoice)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id", saleHandler.Edit)
	salesGroup.Delete("/:id", saleHandler.Delete)
	salesGroup.Post("/:id/cancel", saleHandler.Cancel)
	salesGroup.Get("/:id/invoice.html", invoiceHandler.HTML)
	salesGroup.Get("/:id/invoice.pdf", invoiceHandler.PDF)
	salesGroup.Post("/:id/invoice/confirm", invoiceHandler.Confirm)

	// Gastos
	expenses := api.Group("/expenses")
	expenseHandler := NewExpenseHandler(deps.ExpenseUC)
	expenses.Post("/", expenseHandler.Create)
	expenses.Get("/", expenseHandler.List)
	expenses.Get("/summary", expenseHandler.Summary)
	expenses.Get("/:id", expenseHandler.GetByID)
	expenses.Delete("/:id", expenseHandler.Delete)

	// Inventario (requiere token de la puerta)
	inv := api.Group("/inventory", GateMiddleware(deps.GateUC))
	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.Replenishment)
	inv.Post("/adjust", inventoryHandler.Adjust)
	inv.Post("/top-up", inventoryHandler.TopUp)
	inv.Post("/reset", inventoryHandler.Reset)
	inv.Get("/products/:id/movements", inventoryHandler.ProductHistory)
	inv.Get("/raw-materials/:id/movements", inventoryHandler.MaterialHistory)
	inv.Get("/movements", inventoryHandler.Movements)
	inv.Put("/movements/:entity/:id/note", inventoryHandler.Annotate)
	inv.Get("/audit", inventoryHandler.Audit)
	inv.Get("/replenishment", inventoryHandler.Replenishment)

	// Reportes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.ReportUC)
	reports.Get("/top-products", reportHandler.TopProducts)
	reports.Get("/top-customers", reportHandler.TopCustomers)
	reports.Get("/low-stock", reportHandler.LowStock)
	reports.Get("/material-consumption", reportHandler.MaterialConsumption)
	reports.Get("/production", reportHandler.Production)
	reports.Get("/sales-summary", reportHandler.SalesSummary)
	reports.Get("/dashboard", reportHandler.Dashboard)

	// Importación / exportación
	portationHandler := NewPortationHandler(deps.Portation, deps.ImportWorker)
	api.Post("/imports/:kind", portationHandler.Import)
	api.Get("/imports/jobs/:id", portationHandler.Job)
	api.Get("/exports/:kind", portationHandler.Export)
}
