package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/pos-inventario/internal/application/auth"
	"github.com/jhoicas/pos-inventario/internal/application/catalog"
	"github.com/jhoicas/pos-inventario/internal/application/inventory"
	"github.com/jhoicas/pos-inventario/internal/application/sales"
	domaininv "github.com/jhoicas/pos-inventario/internal/domain/inventory"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/payment"
	"github.com/jhoicas/pos-inventario/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/pos-inventario/internal/interfaces/http"
	"github.com/jhoicas/pos-inventario/pkg/config"
	"github.com/jhoicas/pos-inventario/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("cogs_method", cfg.Inventory.CogsMethod).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	cogsMethod, err := domaininv.ParseCostMethod(cfg.Inventory.CogsMethod)
	if err != nil {
		log.Fatal().Err(err).Str("valor", cfg.Inventory.CogsMethod).Msg("INVENTORY_COGS_METHOD inválido")
	}

	// Repositorios atados al pool (lecturas sueltas); las escrituras del motor
	// de stock corren con repos atados a la transacción vía TxRunner.
	userRepo := postgres.NewUserRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	compRepo := postgres.NewCompositionRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	mutator := inventory.NewStockMutator(txRunner)
	opnameUC := inventory.NewOpnameUseCase(txRunner)
	costingUC := inventory.NewCostingUseCase(txRunner)
	reportUC := inventory.NewReportUseCase(itemRepo, batchRepo, ledgerRepo)
	itemUC := catalog.NewItemUseCase(itemRepo, compRepo)

	authorizer := payment.NewSimulatedAuthorizer(log)
	saleUC := sales.NewSaleUseCase(txRunner, mutator, itemRepo, saleRepo, authorizer, cogsMethod)

	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS Inventario API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:    authUC,
		ItemUC:    itemUC,
		Mutator:   mutator,
		OpnameUC:  opnameUC,
		CostingUC: costingUC,
		ReportUC:  reportUC,
		SaleUC:    saleUC,
		JWTSecret: cfg.JWT.Secret,
	})

	// Barrido de ventas PENDING vencidas: libera el stock reservado.
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.Sales.PendingTTLMinutes > 0 {
		ttl := time.Duration(cfg.Sales.PendingTTLMinutes) * time.Minute
		sweepLog := log.Component("sweeper")
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					released, err := saleUC.ReleaseExpiredPending(sweepCtx, ttl)
					if err != nil {
						sweepLog.Error().Err(err).Msg("barrido de ventas pendientes")
						continue
					}
					if released > 0 {
						sweepLog.Info().Int("ventas", released).Msg("stock de ventas vencidas liberado")
					}
				}
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
