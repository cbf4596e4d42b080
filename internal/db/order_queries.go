package db

import (
	"context"
	"fmt"
)

// UpsertOrder inserts or updates an order by name and returns its id.
// Re-ingesting a known order refreshes year and SI number in place.
func UpsertOrder(ctx context.Context, q Querier, name string, year, siNumber int) (int64, error) {
	const query = `
INSERT INTO orders (order_name, order_year, order_si_number)
VALUES ($1, $2, $3)
ON CONFLICT (order_name) DO UPDATE SET
	order_year = EXCLUDED.order_year,
	order_si_number = EXCLUDED.order_si_number,
	updated_at = now()
RETURNING order_id
`
	var orderID int64
	if err := q.QueryRow(ctx, query, name, year, siNumber).Scan(&orderID); err != nil {
		return 0, fmt.Errorf("upsert order %q: %w", name, err)
	}
	return orderID, nil
}

// TargetOrderIDs lists ids of every order holding at least one article,
// except the given one, in stable order.
func TargetOrderIDs(ctx context.Context, q Querier, exceptOrderID int64) ([]int64, error) {
	const query = `
SELECT DISTINCT o.order_id
FROM orders o
JOIN articles a ON a.order_id = o.order_id
WHERE o.order_id <> $1
ORDER BY o.order_id
`
	rows, err := q.Query(ctx, query, exceptOrderID)
	if err != nil {
		return nil, fmt.Errorf("query target orders: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order ids: %w", err)
	}
	return ids, nil
}

// OrderHeader identifies an order for display alongside match results.
type OrderHeader struct {
	OrderID int64
	Name    string
	Year    int
}

// ListOrderHeaders returns every order holding at least one article,
// keyed by id.
func ListOrderHeaders(ctx context.Context, q Querier) (map[int64]OrderHeader, error) {
	const query = `
SELECT DISTINCT o.order_id, o.order_name, o.order_year
FROM orders o
JOIN articles a ON a.order_id = o.order_id
`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query order headers: %w", err)
	}
	defer rows.Close()

	headers := make(map[int64]OrderHeader)
	for rows.Next() {
		var h OrderHeader
		if err := rows.Scan(&h.OrderID, &h.Name, &h.Year); err != nil {
			return nil, fmt.Errorf("scan order header: %w", err)
		}
		headers[h.OrderID] = h
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order headers: %w", err)
	}
	return headers, nil
}
