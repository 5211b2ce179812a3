package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-pos/internal/application/catalog"
	"github.com/jhoicas/inventario-pos/internal/application/expense"
	"github.com/jhoicas/inventario-pos/internal/application/gate"
	"github.com/jhoicas/inventario-pos/internal/application/inventory"
	"github.com/jhoicas/inventario-pos/internal/application/portation"
	"github.com/jhoicas/inventario-pos/internal/application/reporting"
	"github.com/jhoicas/inventario-pos/internal/application/sales"
	infrapdf "github.com/jhoicas/inventario-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/persistence"
	"github.com/jhoicas/inventario-pos/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/inventario-pos/internal/interfaces/http"
	"github.com/jhoicas/inventario-pos/pkg/config"
	"github.com/jhoicas/inventario-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es requerido para la puerta de inventario")
	}

	ctx := context.Background()
	store, err := persistence.Open(ctx, cfg.Store, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	engine := inventory.NewEngine(inventory.NewLedger())
	portationSvc := portation.NewService(store, store, engine, spreadsheet.New(), log.Component("portation"))

	gateUC := gate.NewUseCase(store, store, gate.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Component("gate"))

	deps := httpRouter.RouterDeps{
		CategoryUC:    catalog.NewCategoryUseCase(store, store, log.Component("catalog")),
		ProductUC:     catalog.NewProductUseCase(store, store, engine, log.Component("catalog")),
		RawMaterialUC: catalog.NewRawMaterialUseCase(store, store, engine, log.Component("catalog")),
		CustomerUC:    catalog.NewCustomerUseCase(store, store, log.Component("catalog")),
		CompanyUC:     catalog.NewCompanyUseCase(store, store),
		SaleUC:        sales.NewSaleUseCase(store, store, engine, log.Component("sales")),
		InvoiceUC:     sales.NewInvoiceUseCase(store, store, infrapdf.NewMarotoPDFGenerator(), log.Component("invoice")),
		ExpenseUC:     expense.NewUseCase(store, store, engine, log.Component("expense")),
		InventoryUC:   inventory.NewUseCase(store, store, engine, log.Component("inventory")),
		Replenishment: inventory.NewReplenishmentUseCase(store),
		ReportUC:      reporting.NewUseCase(store),
		Portation:     portationSvc,
		ImportWorker:  portation.NewWorker(portationSvc, log.Component("import")),
		GateUC:        gateUC,
	}
	app := httpRouter.NewApp(cfg.App.Name, log.Component("http"), deps)

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("escuchando")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
