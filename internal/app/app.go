package app

import (
	"context"
	"fmt"

	"github.com/fsdevblog/groph-delivery/internal/broadcast"
	"github.com/fsdevblog/groph-delivery/internal/config"
	"github.com/fsdevblog/groph-delivery/internal/repository/pgrepo"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
	"github.com/fsdevblog/groph-delivery/internal/service"
	"github.com/fsdevblog/groph-delivery/internal/transport/api"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
	"github.com/sirupsen/logrus"

	// driver for migration applying postgres.
	_ "github.com/golang-migrate/migrate/v4/database/postgres" //nolint:revive
	// driver to get migrations from files (*.sql in our case).
	"os/signal"
	"syscall"

	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:revive
	"github.com/jackc/pgx/v5/pgxpool"
)

type App struct {
	Config *config.Config
	Logger *logrus.Logger
}

func New(conf *config.Config, l *logrus.Logger) *App {
	return &App{
		Config: conf,
		Logger: l,
	}
}

func (a *App) Run() error {
	notifyCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Logger.Infof("Starting app with config: %+v", a.Config)
	conn, connErr := pgrepo.Connect(notifyCtx, a.Config.MigrationsDir, a.Config.DatabaseDSN, a.Logger)
	if connErr != nil {
		return fmt.Errorf("app run: %s", connErr.Error())
	}
	defer conn.Close()

	unitOfWork, uowErr := initUOW(conn)
	if uowErr != nil {
		return fmt.Errorf("app run: %s", uowErr.Error())
	}

	broadcaster, bcErr := a.initBroadcaster()
	if bcErr != nil {
		return fmt.Errorf("app run: %s", bcErr.Error())
	}
	if closer, ok := broadcaster.(*broadcast.StanBroadcaster); ok {
		defer func() { _ = closer.Close() }()
	}

	services, sErr := service.Factory(unitOfWork, broadcaster, a.Logger)
	if sErr != nil {
		return fmt.Errorf("app run: %s", sErr.Error())
	}
	defer services.Notifier.Wait()

	router := api.New(api.RouterArgs{
		Logger:          a.Logger,
		OrderService:    services.OrderService,
		DeliveryService: services.DeliveryService,
		JWTSecretKey:    []byte(a.Config.JWTSecret),
	})

	errChan := make(chan error, 1)

	go func() {
		if runErr := router.Run(a.Config.RunAddress); runErr != nil {
			errChan <- runErr
		}
	}()

	select {
	case <-notifyCtx.Done():
		return notifyCtx.Err() //nolint:wrapcheck
	case err := <-errChan:
		return err
	}
}

// initBroadcaster connects NATS Streaming when a URL is configured and
// falls back to a no-op sink otherwise.
func (a *App) initBroadcaster() (service.Broadcaster, error) {
	if a.Config.NatsURL == "" {
		a.Logger.Info("NATS URL is empty, realtime broadcast disabled")
		return broadcast.Noop{}, nil
	}
	sb, err := broadcast.Connect(a.Config.StanClusterID, a.Config.StanClientID, a.Config.NatsURL)
	if err != nil {
		return nil, fmt.Errorf("init broadcaster: %s", err.Error())
	}
	return sb, nil
}

func initUOW(conn *pgxpool.Pool) (*uow.UnitOfWork, error) {
	unitOfWork := uow.NewUnitOfWork(conn)

	factories := map[repoargs.RepositoryName]uow.RepositoryFactory{
		repoargs.OrderRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewOrderRepository(dbtx)
		},
		repoargs.ProductRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewProductRepository(dbtx)
		},
		repoargs.MerchantRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewMerchantRepository(dbtx)
		},
		repoargs.PaymentRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewPaymentRepository(dbtx)
		},
		repoargs.NotificationRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewNotificationRepository(dbtx)
		},
		repoargs.CourierLocationRepoName: func(dbtx uow.DBTX) uow.Repository {
			return pgrepo.NewCourierLocationRepository(dbtx)
		},
	}

	for name, factoryFn := range factories {
		if regErr := unitOfWork.Register(uow.RepositoryName(name), factoryFn); regErr != nil {
			return nil, fmt.Errorf("init UOW: %s", regErr.Error())
		}
	}

	return unitOfWork, nil
}
