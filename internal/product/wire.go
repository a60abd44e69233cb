package product

import (
	"database/sql"

	"go.uber.org/zap"

	"shopkeeper/internal/config"
	"shopkeeper/internal/infrastructure/mysql"
	"shopkeeper/internal/product/controller"
	"shopkeeper/internal/product/repository"
	"shopkeeper/internal/product/service"
	"shopkeeper/internal/product/usecase"
	shelfrepo "shopkeeper/internal/shelf/repository"
	stockrepo "shopkeeper/internal/stock/repository"
)

func NewModule(db *sql.DB, cfg config.ProductConfig, logger *zap.Logger) *controller.ProductsController {
	txManager := mysql.NewTxManager(db, logger, cfg.TxTimeout, cfg.MaxRetryAttempts)
	repo := repository.NewMySQLRepository(db)
	shelves := shelfrepo.NewMySQLShelfRepository(db)
	stock := stockrepo.NewMySQLStockRepository(db)

	svc := service.NewProductService(txManager, repo, shelves, stock, logger)
	uc := usecase.NewProductsUseCase(svc)
	return controller.NewProductsController(uc, logger)
}
