package service

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
	"github.com/fsdevblog/groph-delivery/internal/service/mocks"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
	uowmocks "github.com/fsdevblog/groph-delivery/pkg/uow/mocks"
)

type OrderServiceTestSuite struct {
	suite.Suite
	mockCtrl         *gomock.Controller
	mockUOW          *uowmocks.MockUOW
	mockTX           *uowmocks.MockTX
	mockOrderRepo    *mocks.MockOrderRepository
	mockProductRepo  *mocks.MockProductRepository
	mockMerchantRepo *mocks.MockMerchantRepository
	mockPaymentRepo  *mocks.MockPaymentRepository
	mockNotifRepo    *mocks.MockNotificationRepository
	notifier         *Notifier
	orderService     *OrderService
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (s *OrderServiceTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockUOW = uowmocks.NewMockUOW(s.mockCtrl)
	s.mockTX = uowmocks.NewMockTX(s.mockCtrl)
	s.mockOrderRepo = mocks.NewMockOrderRepository(s.mockCtrl)
	s.mockProductRepo = mocks.NewMockProductRepository(s.mockCtrl)
	s.mockMerchantRepo = mocks.NewMockMerchantRepository(s.mockCtrl)
	s.mockPaymentRepo = mocks.NewMockPaymentRepository(s.mockCtrl)
	s.mockNotifRepo = mocks.NewMockNotificationRepository(s.mockCtrl)

	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockUOW.EXPECT().GetRepository(uow.RepositoryName(repoargs.NotificationRepoName)).
		Return(s.mockNotifRepo, nil).AnyTimes()

	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.OrderRepoName)).
		Return(s.mockOrderRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.ProductRepoName)).
		Return(s.mockProductRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.MerchantRepoName)).
		Return(s.mockMerchantRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.PaymentRepoName)).
		Return(s.mockPaymentRepo, nil).AnyTimes()
	s.mockTX.EXPECT().Get(uow.RepositoryName(repoargs.NotificationRepoName)).
		Return(s.mockNotifRepo, nil).AnyTimes()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	notifier, notifErr := NewNotifier(s.mockUOW, mocks.NewMockBroadcaster(s.mockCtrl), logger)
	s.Require().NoError(notifErr)
	s.notifier = notifier

	orderService, servErr := NewOrderService(s.mockUOW, notifier)
	s.Require().NoError(servErr)
	s.orderService = orderService
}

func (s *OrderServiceTestSuite) TearDownTest() {
	s.notifier.Wait()
	s.mockCtrl.Finish()
}

// expectDo wires uow.Do straight through to the transactional callback.
func (s *OrderServiceTestSuite) expectDo() {
	s.mockUOW.EXPECT().Do(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn func(context.Context, uow.TX) error) error {
			return fn(ctx, s.mockTX)
		})
}

func (s *OrderServiceTestSuite) TestCreate() {
	s.expectDo()

	products := []domain.Product{
		{ID: 1, MerchantID: 7, Name: gofakeit.ProductName(), Price: decimal.RequireFromString("5.50"), Quantity: 5},
		{ID: 2, MerchantID: 7, Name: gofakeit.ProductName(), Price: decimal.NewFromInt(9), Quantity: 3},
	}

	s.mockProductRepo.EXPECT().
		GetByIDs(gomock.Any(), []int64{1, 2}).
		Return(products, nil)
	s.mockProductRepo.EXPECT().Reserve(gomock.Any(), int64(1), int32(2)).Return(nil)
	s.mockProductRepo.EXPECT().Reserve(gomock.Any(), int64(2), int32(1)).Return(nil)

	s.mockOrderRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
			// 2 * 5.50 + 1 * 9
			s.True(args.Total.Equal(decimal.NewFromInt(20)), "total was %s", args.Total)
			s.Equal(domain.OrderStatusPending, args.Status)
			return &domain.Order{
				ID:        42,
				CreatedAt: time.Now(),
				ClientID:  args.ClientID,
				Status:    args.Status,
				Total:     args.Total,
				Address:   args.Address,
			}, nil
		})
	s.mockOrderRepo.EXPECT().
		CreateLines(gomock.Any(), int64(42), gomock.Len(2)).
		Return([]domain.OrderLine{
			{ID: 1, OrderID: 42, ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("5.50")},
			{ID: 2, OrderID: 42, ProductID: 2, Quantity: 1, UnitPrice: decimal.NewFromInt(9)},
		}, nil)

	s.mockPaymentRepo.EXPECT().
		Create(gomock.Any(), int64(42), domain.PaymentMethodCash).
		Return(&domain.Payment{OrderID: 42, Method: domain.PaymentMethodCash, Status: domain.PaymentStatusPending}, nil)

	s.mockMerchantRepo.EXPECT().
		FindByID(gomock.Any(), int64(7)).
		Return(&domain.Merchant{ID: 7, UserID: 70}, nil)
	s.mockNotifRepo.EXPECT().
		Create(gomock.Any(), repoargs.CreateNotification{
			UserID:  70,
			Message: "Nouvelle commande #42",
			Type:    domain.NotificationNewOrder,
		}).
		Return(&domain.Notification{}, nil)

	order, err := s.orderService.Create(context.Background(), CreateOrderArgs{
		ClientID: 10,
		Lines: []OrderLineInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
		Address:       gofakeit.Address().Address,
		PaymentMethod: domain.PaymentMethodCash,
	})
	s.Require().NoError(err)
	s.Equal(int64(42), order.ID)
	s.Len(order.Lines, 2)
}

func (s *OrderServiceTestSuite) TestCreateEmptyOrder() {
	_, err := s.orderService.Create(context.Background(), CreateOrderArgs{ClientID: 10})
	s.ErrorIs(err, domain.ErrEmptyOrder)
}

func (s *OrderServiceTestSuite) TestCreateInsufficientStock() {
	s.expectDo()

	s.mockProductRepo.EXPECT().
		GetByIDs(gomock.Any(), []int64{1}).
		Return([]domain.Product{
			{ID: 1, MerchantID: 7, Price: decimal.NewFromInt(4), Quantity: 1},
		}, nil)
	s.mockProductRepo.EXPECT().
		Reserve(gomock.Any(), int64(1), int32(3)).
		Return(domain.NewInsufficientStockError(1))

	_, err := s.orderService.Create(context.Background(), CreateOrderArgs{
		ClientID:      10,
		Lines:         []OrderLineInput{{ProductID: 1, Quantity: 3}},
		PaymentMethod: domain.PaymentMethodCard,
	})
	s.ErrorIs(err, domain.ErrInsufficientStock)
}

func (s *OrderServiceTestSuite) TestCreateUnknownProduct() {
	s.expectDo()

	s.mockProductRepo.EXPECT().
		GetByIDs(gomock.Any(), []int64{1, 99}).
		Return([]domain.Product{
			{ID: 1, MerchantID: 7, Price: decimal.NewFromInt(4), Quantity: 10},
		}, nil)

	_, err := s.orderService.Create(context.Background(), CreateOrderArgs{
		ClientID: 10,
		Lines: []OrderLineInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 99, Quantity: 1},
		},
		PaymentMethod: domain.PaymentMethodCard,
	})
	s.ErrorIs(err, domain.ErrProductNotFound)
}

func (s *OrderServiceTestSuite) TestUpdateStatusMerchantAccepts() {
	s.expectDo()

	pending := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(pending, nil)
	s.mockOrderRepo.EXPECT().MerchantUserID(gomock.Any(), int64(42)).Return(int64(70), nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), repoargs.UpdateOrderStatus{
			OrderID:  42,
			Expected: domain.OrderStatusPending,
			Target:   domain.OrderStatusAccepted,
		}).
		Return(&domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusAccepted}, nil)
	s.mockNotifRepo.EXPECT().
		Create(gomock.Any(), repoargs.CreateNotification{
			UserID:  10,
			Message: "Votre commande #42 a été acceptée",
			Type:    domain.NotificationOrderStatus,
		}).
		Return(&domain.Notification{}, nil)

	order, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: 70,
		Role:    domain.RoleMerchant,
		Target:  domain.OrderStatusAccepted,
	})
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusAccepted, order.Status)
	s.notifier.Wait()
}

func (s *OrderServiceTestSuite) TestUpdateStatusForeignMerchant() {
	s.expectDo()

	pending := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(pending, nil)
	s.mockOrderRepo.EXPECT().MerchantUserID(gomock.Any(), int64(42)).Return(int64(70), nil)

	_, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: 71,
		Role:    domain.RoleMerchant,
		Target:  domain.OrderStatusAccepted,
	})
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *OrderServiceTestSuite) TestUpdateStatusMerchantRefused() {
	s.expectDo()

	pending := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(pending, nil)
	s.mockOrderRepo.EXPECT().MerchantUserID(gomock.Any(), int64(42)).Return(int64(70), nil)
	// refused is stored as cancelled
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), repoargs.UpdateOrderStatus{
			OrderID:  42,
			Expected: domain.OrderStatusPending,
			Target:   domain.OrderStatusCancelled,
		}).
		Return(&domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusCancelled}, nil)
	s.mockNotifRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(&domain.Notification{}, nil)

	order, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: 70,
		Role:    domain.RoleMerchant,
		Target:  domain.OrderStatusRefused,
	})
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, order.Status)
	s.notifier.Wait()
}

func (s *OrderServiceTestSuite) TestUpdateStatusMerchantCannotShip() {
	s.expectDo()

	pending := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(pending, nil)
	s.mockOrderRepo.EXPECT().MerchantUserID(gomock.Any(), int64(42)).Return(int64(70), nil)

	_, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: 70,
		Role:    domain.RoleMerchant,
		Target:  domain.OrderStatusInTransit,
	})
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *OrderServiceTestSuite) TestUpdateStatusCourierDeliversCash() {
	s.expectDo()

	courierID := int64(5)
	inTransit := &domain.Order{ID: 42, ClientID: 10, CourierID: &courierID, Status: domain.OrderStatusInTransit}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(inTransit, nil)
	s.mockPaymentRepo.EXPECT().SettleCash(gomock.Any(), int64(42)).Return(nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args repoargs.UpdateOrderStatus) (*domain.Order, error) {
			s.Equal(domain.OrderStatusDelivered, args.Target)
			s.Require().NotNil(args.DeliveredAt)
			return &domain.Order{
				ID:          42,
				ClientID:    10,
				CourierID:   &courierID,
				Status:      domain.OrderStatusDelivered,
				DeliveredAt: args.DeliveredAt,
			}, nil
		})
	s.mockNotifRepo.EXPECT().
		Create(gomock.Any(), repoargs.CreateNotification{
			UserID:  10,
			Message: "Votre commande #42 a été livrée",
			Type:    domain.NotificationOrderDelivered,
		}).
		Return(&domain.Notification{}, nil)

	order, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: courierID,
		Role:    domain.RoleCourier,
		Target:  domain.OrderStatusDelivered,
	})
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusDelivered, order.Status)
	s.NotNil(order.DeliveredAt)
	s.notifier.Wait()
}

func (s *OrderServiceTestSuite) TestUpdateStatusForeignCourierCannotDeliver() {
	s.expectDo()

	holderID := int64(5)
	inTransit := &domain.Order{ID: 42, ClientID: 10, CourierID: &holderID, Status: domain.OrderStatusInTransit}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(inTransit, nil)

	_, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: 6,
		Role:    domain.RoleCourier,
		Target:  domain.OrderStatusDelivered,
	})
	s.ErrorIs(err, domain.ErrForbidden)
}

func (s *OrderServiceTestSuite) TestUpdateStatusClaimedByAnother() {
	s.expectDo()

	holderID := int64(5)
	accepted := &domain.Order{ID: 42, ClientID: 10, CourierID: &holderID, Status: domain.OrderStatusAccepted}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(accepted, nil)

	_, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: 6,
		Role:    domain.RoleCourier,
		Target:  domain.OrderStatusInTransit,
	})
	s.ErrorIs(err, domain.ErrOrderUnavailable)
}

func (s *OrderServiceTestSuite) TestUpdateStatusUnknownOrder() {
	s.expectDo()

	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(404)).Return(nil, domain.ErrRecordNotFound)

	_, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 404,
		ActorID: 70,
		Role:    domain.RoleMerchant,
		Target:  domain.OrderStatusAccepted,
	})
	s.ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *OrderServiceTestSuite) TestUpdateStatusBadLabel() {
	_, err := s.orderService.UpdateStatus(context.Background(), UpdateStatusArgs{
		OrderID: 42,
		ActorID: 70,
		Role:    domain.RoleMerchant,
		Target:  domain.OrderStatusType("shipped"),
	})
	s.ErrorIs(err, domain.ErrInvalidTransition)
}

func (s *OrderServiceTestSuite) TestCancelPendingRestoresStock() {
	s.expectDo()

	pending := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(pending, nil)
	s.mockOrderRepo.EXPECT().
		GetLines(gomock.Any(), int64(42)).
		Return([]domain.OrderLine{
			{OrderID: 42, ProductID: 1, Quantity: 2},
			{OrderID: 42, ProductID: 2, Quantity: 1},
		}, nil)
	s.mockProductRepo.EXPECT().Release(gomock.Any(), int64(1), int32(2)).Return(nil)
	s.mockProductRepo.EXPECT().Release(gomock.Any(), int64(2), int32(1)).Return(nil)
	s.mockOrderRepo.EXPECT().
		UpdateStatus(gomock.Any(), repoargs.UpdateOrderStatus{
			OrderID:  42,
			Expected: domain.OrderStatusPending,
			Target:   domain.OrderStatusCancelled,
		}).
		Return(&domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusCancelled}, nil)
	s.mockNotifRepo.EXPECT().
		Create(gomock.Any(), repoargs.CreateNotification{
			UserID:  10,
			Message: "Votre commande #42 a été annulée",
			Type:    domain.NotificationOrderStatus,
		}).
		Return(&domain.Notification{}, nil)

	order, err := s.orderService.Cancel(context.Background(), 10, 42)
	s.Require().NoError(err)
	s.Equal(domain.OrderStatusCancelled, order.Status)
	s.notifier.Wait()
}

func (s *OrderServiceTestSuite) TestCancelAcceptedOrder() {
	s.expectDo()

	accepted := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusAccepted}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(accepted, nil)

	_, err := s.orderService.Cancel(context.Background(), 10, 42)
	s.ErrorIs(err, domain.ErrInvalidTransition)
}

func (s *OrderServiceTestSuite) TestCancelForeignOrder() {
	s.expectDo()

	pending := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().LockByID(gomock.Any(), int64(42)).Return(pending, nil)

	// foreign orders look missing, not forbidden
	_, err := s.orderService.Cancel(context.Background(), 11, 42)
	s.ErrorIs(err, domain.ErrOrderNotFound)
}

func (s *OrderServiceTestSuite) TestGetByID() {
	order := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)
	s.mockOrderRepo.EXPECT().
		GetLines(gomock.Any(), int64(42)).
		Return([]domain.OrderLine{{OrderID: 42, ProductID: 1, Quantity: 1}}, nil)

	got, err := s.orderService.GetByID(context.Background(), 42, 10, domain.RoleClient)
	s.Require().NoError(err)
	s.Len(got.Lines, 1)
}

func (s *OrderServiceTestSuite) TestGetByIDForeignClient() {
	order := &domain.Order{ID: 42, ClientID: 10, Status: domain.OrderStatusPending}
	s.mockOrderRepo.EXPECT().FindByID(gomock.Any(), int64(42)).Return(order, nil)

	_, err := s.orderService.GetByID(context.Background(), 42, 11, domain.RoleClient)
	s.ErrorIs(err, domain.ErrForbidden)
}
