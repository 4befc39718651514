package pgrepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fsdevblog/groph-delivery/internal/domain"
	"github.com/fsdevblog/groph-delivery/internal/repository/repoargs"
	"github.com/fsdevblog/groph-delivery/pkg/uow"
)

const orderColumns = `id, created_at, updated_at, client_id, courier_id, status, total,
	delivery_address, delivery_latitude, delivery_longitude, delivered_at`

type OrderRepository struct {
	db uow.DBTX
}

func NewOrderRepository(db uow.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func (o *OrderRepository) Create(ctx context.Context, args repoargs.CreateOrder) (*domain.Order, error) {
	var lat, lng *float64
	if args.Location != nil {
		lat, lng = &args.Location.Latitude, &args.Location.Longitude
	}
	row := o.db.QueryRow(ctx, `
		INSERT INTO orders (client_id, status, total, delivery_address, delivery_latitude, delivery_longitude)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+orderColumns,
		args.ClientID, args.Status, args.Total, args.Address, lat, lng,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "creating order for client %d", args.ClientID)
	}
	return order, nil
}

func (o *OrderRepository) CreateLines(
	ctx context.Context,
	orderID int64,
	lines []repoargs.CreateOrderLine,
) ([]domain.OrderLine, error) {
	var created = make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		row := o.db.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id, order_id, product_id, quantity, unit_price`,
			orderID, line.ProductID, line.Quantity, line.UnitPrice,
		)
		var l domain.OrderLine
		if err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, convertErr(err, "creating line for order %d product %d", orderID, line.ProductID)
		}
		created = append(created, l)
	}
	return created, nil
}

func (o *OrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "finding order %d", id)
	}
	return order, nil
}

// LockByID reads the order under a row lock. Only meaningful inside a
// unit-of-work transaction; the lock is held until commit or rollback.
func (o *OrderRepository) LockByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "locking order %d", id)
	}
	return order, nil
}

func (o *OrderRepository) GetLines(ctx context.Context, orderID int64) ([]domain.OrderLine, error) {
	rows, err := o.db.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, convertErr(err, "getting lines for order %d", orderID)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if scanErr := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); scanErr != nil {
			return nil, convertErr(scanErr, "scanning line for order %d", orderID)
		}
		lines = append(lines, l)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting lines for order %d", orderID)
	}
	return lines, nil
}

// GetByClientID returns the client's orders sorted by creation date descending.
func (o *OrderRepository) GetByClientID(
	ctx context.Context,
	clientID int64,
	status *domain.OrderStatusType,
) ([]domain.Order, error) {
	return o.getFiltered(ctx, `client_id = $1`, clientID, status)
}

// GetByCourierID returns the courier's deliveries sorted by creation date descending.
func (o *OrderRepository) GetByCourierID(
	ctx context.Context,
	courierID int64,
	status *domain.OrderStatusType,
) ([]domain.Order, error) {
	return o.getFiltered(ctx, `courier_id = $1`, courierID, status)
}

func (o *OrderRepository) getFiltered(
	ctx context.Context,
	cond string,
	id int64,
	status *domain.OrderStatusType,
) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE ` + cond
	args := []any{id}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := o.db.Query(ctx, query, args...)
	if err != nil {
		return nil, convertErr(err, "getting orders by %s `%d`", cond, id)
	}
	defer rows.Close()
	return scanOrders(rows, cond, id)
}

// GetAvailable returns unassigned orders in an assignable status, each
// joined with the pickup merchant of its first line.
func (o *OrderRepository) GetAvailable(ctx context.Context) ([]repoargs.AvailableOrder, error) {
	rows, err := o.db.Query(ctx, `
		SELECT DISTINCT ON (o.id) `+prefixedOrderColumns("o")+`,
			m.name, m.address, m.latitude, m.longitude
		FROM orders o
		JOIN order_lines ol ON ol.order_id = o.id
		JOIN products p ON p.id = ol.product_id
		JOIN merchants m ON m.id = p.merchant_id
		WHERE o.status IN ($1, $2) AND o.courier_id IS NULL
		ORDER BY o.id, ol.id`,
		domain.OrderStatusPending, domain.OrderStatusAccepted,
	)
	if err != nil {
		return nil, convertErr(err, "getting available orders")
	}
	defer rows.Close()

	var available []repoargs.AvailableOrder
	for rows.Next() {
		var (
			order         domain.Order
			courierID     *int64
			dLat, dLng    *float64
			mLat, mLng    *float64
			name, address string
		)
		scanErr := rows.Scan(
			&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.ClientID, &courierID,
			&order.Status, &order.Total, &order.Address, &dLat, &dLng, &order.DeliveredAt,
			&name, &address, &mLat, &mLng,
		)
		if scanErr != nil {
			return nil, convertErr(scanErr, "scanning available order")
		}
		order.CourierID = courierID
		order.Location = coordsFromNullable(dLat, dLng)
		available = append(available, repoargs.AvailableOrder{
			Order:            order,
			MerchantName:     name,
			MerchantAddress:  address,
			MerchantLocation: coordsFromNullable(mLat, mLng),
		})
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting available orders")
	}
	return available, nil
}

// UpdateStatus applies a compare-and-set write: the row is updated only
// while it still holds args.Expected. A miss returns ErrRecordNotFound.
func (o *OrderRepository) UpdateStatus(ctx context.Context, args repoargs.UpdateOrderStatus) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $1,
			courier_id = COALESCE($2, courier_id),
			delivered_at = COALESCE($3, delivered_at),
			updated_at = now()
		WHERE id = $4 AND status = $5
		RETURNING `+orderColumns,
		args.Target, args.CourierID, args.DeliveredAt, args.OrderID, args.Expected,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "updating status of order %d to %s", args.OrderID, args.Target)
	}
	return order, nil
}

// Claim atomically assigns the courier: the write succeeds only while the
// order is still unassigned and in an assignable status, so concurrent
// claims cannot both win. A miss returns ErrOrderUnavailable.
func (o *OrderRepository) Claim(ctx context.Context, orderID, courierID int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		UPDATE orders
		SET courier_id = $1, status = $2, updated_at = now()
		WHERE id = $3 AND courier_id IS NULL AND status IN ($4, $5)
		RETURNING `+orderColumns,
		courierID, domain.OrderStatusInTransit, orderID,
		domain.OrderStatusPending, domain.OrderStatusAccepted,
	)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderUnavailable
		}
		return nil, convertErr(err, "claiming order %d for courier %d", orderID, courierID)
	}
	return order, nil
}

// RefuseUnclaimed cancels an order under the same precondition as Claim;
// the courier id stays null.
func (o *OrderRepository) RefuseUnclaimed(ctx context.Context, orderID int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2 AND courier_id IS NULL AND status IN ($3, $4)
		RETURNING `+orderColumns,
		domain.OrderStatusCancelled, orderID,
		domain.OrderStatusPending, domain.OrderStatusAccepted,
	)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderUnavailable
		}
		return nil, convertErr(err, "refusing order %d", orderID)
	}
	return order, nil
}

// ReleaseClaim cancels an in-transit order held by the given courier and
// clears the assignment. A miss returns ErrRecordNotFound.
func (o *OrderRepository) ReleaseClaim(ctx context.Context, orderID, courierID int64) (*domain.Order, error) {
	row := o.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $1, courier_id = NULL, updated_at = now()
		WHERE id = $2 AND courier_id = $3 AND status = $4
		RETURNING `+orderColumns,
		domain.OrderStatusCancelled, orderID, courierID, domain.OrderStatusInTransit,
	)
	order, err := scanOrder(row)
	if err != nil {
		return nil, convertErr(err, "releasing claim of courier %d on order %d", courierID, orderID)
	}
	return order, nil
}

// MerchantUserID resolves the user the merchant-side notification for an
// order is addressed to: the owner of the first line's merchant.
func (o *OrderRepository) MerchantUserID(ctx context.Context, orderID int64) (int64, error) {
	var userID int64
	err := o.db.QueryRow(ctx, `
		SELECT m.user_id
		FROM order_lines ol
		JOIN products p ON p.id = ol.product_id
		JOIN merchants m ON m.id = p.merchant_id
		WHERE ol.order_id = $1
		ORDER BY ol.id
		LIMIT 1`, orderID,
	).Scan(&userID)
	if err != nil {
		return 0, convertErr(err, "resolving merchant user for order %d", orderID)
	}
	return userID, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order     domain.Order
		courierID *int64
		lat, lng  *float64
		delivered *time.Time
	)
	err := row.Scan(
		&order.ID, &order.CreatedAt, &order.UpdatedAt, &order.ClientID, &courierID,
		&order.Status, &order.Total, &order.Address, &lat, &lng, &delivered,
	)
	if err != nil {
		return nil, err
	}
	order.CourierID = courierID
	order.Location = coordsFromNullable(lat, lng)
	order.DeliveredAt = delivered
	return &order, nil
}

func scanOrders(rows pgx.Rows, cond string, id int64) ([]domain.Order, error) {
	var orders []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, convertErr(err, "scanning orders by %s `%d`", cond, id)
		}
		orders = append(orders, *order)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, convertErr(rowsErr, "getting orders by %s `%d`", cond, id)
	}
	return orders, nil
}

func coordsFromNullable(lat, lng *float64) *domain.Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &domain.Coordinates{Latitude: *lat, Longitude: *lng}
}

func prefixedOrderColumns(alias string) string {
	return alias + `.id, ` + alias + `.created_at, ` + alias + `.updated_at, ` +
		alias + `.client_id, ` + alias + `.courier_id, ` + alias + `.status, ` +
		alias + `.total, ` + alias + `.delivery_address, ` + alias + `.delivery_latitude, ` +
		alias + `.delivery_longitude, ` + alias + `.delivered_at`
}
